package service

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"fireplace_cli/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

// mockClients is a lightweight in-test mock for repository.Clients.
type mockClients struct {
	CreateFn    func(name, hash string) (int, error)
	GetByNameFn func(name string) (*models.APIClient, error)

	createCalls []struct {
		name string
		hash string
	}
	getCalls []string
}

func (m *mockClients) Create(name, hash string) (int, error) {
	m.createCalls = append(m.createCalls, struct {
		name string
		hash string
	}{name: name, hash: hash})
	return m.CreateFn(name, hash)
}

func (m *mockClients) GetByName(name string) (*models.APIClient, error) {
	m.getCalls = append(m.getCalls, name)
	return m.GetByNameFn(name)
}

func mustHash(t *testing.T, key string) string {
	t.Helper()
	h, err := HashAPIKey(key)
	if err != nil {
		t.Fatalf("HashAPIKey failed: %v", err)
	}
	return h
}

// --- RegisterClient tests ---

func TestAuthService_RegisterClient_HashesKey(t *testing.T) {
	mock := &mockClients{
		CreateFn: func(name, hash string) (int, error) { return 42, nil },
	}
	svc := NewAuthService(mock, AuthConfig{Secret: testSecret})

	id, err := svc.RegisterClient("dashboard", "s3cr3t")
	if err != nil {
		t.Fatalf("RegisterClient returned error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if len(mock.createCalls) != 1 {
		t.Fatalf("expected 1 Create call, got %d", len(mock.createCalls))
	}
	call := mock.createCalls[0]
	if call.name != "dashboard" {
		t.Errorf("expected name 'dashboard', got %q", call.name)
	}
	if call.hash == "s3cr3t" {
		t.Errorf("expected hashed key not equal to raw key")
	}
	if err := verifyAPIKey(call.hash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with original key: %v", err)
	}
}

func TestAuthService_RegisterClient_Rejects(t *testing.T) {
	mock := &mockClients{
		CreateFn: func(name, hash string) (int, error) {
			t.Fatal("Create should not be called")
			return 0, nil
		},
	}
	svc := NewAuthService(mock, AuthConfig{Secret: testSecret})

	for _, tc := range []struct{ name, key string }{
		{"bob", "   "},
		{"", "key"},
		{DefaultClient, "key"},
	} {
		if _, err := svc.RegisterClient(tc.name, tc.key); err == nil {
			t.Fatalf("expected error for name=%q key=%q", tc.name, tc.key)
		}
	}
}

func TestAuthService_RegisterClient_NoStore(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret})
	if _, err := svc.RegisterClient("phone", "key"); !errors.Is(err, ErrJournalDisabled) {
		t.Fatalf("expected ErrJournalDisabled, got %v", err)
	}
}

// --- GenerateToken tests ---

func TestAuthService_GenerateToken_DefaultClient(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret, APIKeyHash: mustHash(t, "letmein")})

	token, err := svc.GenerateToken("", "letmein")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	sub, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if sub != DefaultClient {
		t.Fatalf("expected subject %q, got %q", DefaultClient, sub)
	}

	if _, err := svc.GenerateToken(DefaultClient, "wrong"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestAuthService_GenerateToken_DefaultClientUnconfigured(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret})
	if _, err := svc.GenerateToken("", "anything"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestAuthService_GenerateToken_NamedClient(t *testing.T) {
	client := &models.APIClient{ID: 7, Name: "diana", KeyHash: mustHash(t, "letmein")}
	mock := &mockClients{
		GetByNameFn: func(name string) (*models.APIClient, error) {
			if name != "diana" {
				t.Fatalf("expected name 'diana', got %q", name)
			}
			return client, nil
		},
	}
	svc := NewAuthService(mock, AuthConfig{Secret: testSecret})

	token, err := svc.GenerateToken("diana", "letmein")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	sub, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if sub != "diana" {
		t.Fatalf("expected subject diana, got %q", sub)
	}
	if len(mock.getCalls) != 1 {
		t.Fatalf("expected 1 GetByName call, got %d", len(mock.getCalls))
	}

	if _, err := svc.GenerateToken("diana", "wrong"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestAuthService_GenerateToken_ClientNotFound(t *testing.T) {
	mock := &mockClients{
		GetByNameFn: func(name string) (*models.APIClient, error) { return nil, nil },
	}
	svc := NewAuthService(mock, AuthConfig{Secret: testSecret})

	if _, err := svc.GenerateToken("ghost", "pw"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got: %v", err)
	}
}

func TestAuthService_GenerateToken_RepoError(t *testing.T) {
	mock := &mockClients{
		GetByNameFn: func(name string) (*models.APIClient, error) { return nil, errors.New("query failed") },
	}
	svc := NewAuthService(mock, AuthConfig{Secret: testSecret})

	if _, err := svc.GenerateToken("john", "pw"); err == nil {
		t.Fatalf("expected repo error, got nil")
	}
}

func TestAuthService_GenerateToken_NoSecret(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{APIKeyHash: mustHash(t, "k")})
	if _, err := svc.GenerateToken("", "k"); !errors.Is(err, ErrNoSigningSecret) {
		t.Fatalf("expected ErrNoSigningSecret, got %v", err)
	}
}

// --- ParseToken tests ---

func TestAuthService_ParseToken_Malformed(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret})
	if _, err := svc.ParseToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestAuthService_ParseToken_InvalidSignature(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret})

	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	badToken, err := tk.SignedString([]byte("different-key"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	if _, err := svc.ParseToken(badToken); err == nil {
		t.Fatalf("expected signature verification error")
	}
}

func TestAuthService_ParseToken_Expired(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret})
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := svc.issueToken("old", 0)
	if err != nil {
		t.Fatalf("issueToken failed: %v", err)
	}

	svc.now = time.Now
	if _, err := svc.ParseToken(token); err == nil {
		t.Fatalf("expected error for expired token")
	}
}

func TestAuthService_ParseToken_UnexpectedAlg(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{Secret: testSecret})

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}
	now := time.Now()
	tk := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "rsa",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	tokenStr, err := tk.SignedString(privateKey)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	if _, err := svc.ParseToken(tokenStr); err == nil {
		t.Fatalf("expected error due to unexpected signing method")
	}
}
