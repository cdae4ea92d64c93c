package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fireplace_cli/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of issued tokens.
const TokenTTL = time.Hour

// DefaultClient is the client name bound to the configured API_KEY_HASH.
const DefaultClient = "default"

// Domain errors for auth flows.
var (
	ErrInvalidAPIKey   = errors.New("invalid api key")
	ErrClientNotFound  = errors.New("client not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNoSigningSecret = errors.New("jwt secret is not configured")
)

// AuthConfig carries the token secret and the optional default client key hash.
type AuthConfig struct {
	Secret     []byte
	APIKeyHash string
}

// AuthService verifies API keys and issues bearer tokens.
type AuthService struct {
	clients repository.Clients
	cfg     AuthConfig
	now     func() time.Time
}

// NewAuthService returns an auth service. clients may be nil, in which case only the
// default client can log in.
func NewAuthService(clients repository.Clients, cfg AuthConfig) *AuthService {
	return &AuthService{clients: clients, cfg: cfg, now: time.Now}
}

// RegisterClient stores a named client with a hashed API key.
func (s *AuthService) RegisterClient(name, apiKey string) (int, error) {
	if s.clients == nil {
		return 0, ErrJournalDisabled
	}
	name = strings.TrimSpace(name)
	if name == "" || name == DefaultClient {
		return 0, fmt.Errorf("invalid client name %q", name)
	}
	hash, err := HashAPIKey(apiKey)
	if err != nil {
		return 0, fmt.Errorf("invalid api key: %w", err)
	}
	return s.clients.Create(name, hash)
}

// Claims defines JWT claims; the subject is the client name.
type Claims struct {
	jwt.RegisteredClaims
	ClientID int `json:"client_id,omitempty"`
}

// GenerateToken verifies apiKey for the named client and returns a signed JWT.
// An empty name means DefaultClient.
func (s *AuthService) GenerateToken(name, apiKey string) (string, error) {
	if len(s.cfg.Secret) == 0 {
		return "", ErrNoSigningSecret
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultClient
	}

	if name == DefaultClient {
		if s.cfg.APIKeyHash == "" {
			return "", ErrClientNotFound
		}
		if err := verifyAPIKey(s.cfg.APIKeyHash, apiKey); err != nil {
			return "", ErrInvalidAPIKey
		}
		return s.issueToken(name, 0)
	}

	if s.clients == nil {
		return "", ErrClientNotFound
	}
	c, err := s.clients.GetByName(name)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", ErrClientNotFound
	}
	if err := verifyAPIKey(c.KeyHash, apiKey); err != nil {
		return "", ErrInvalidAPIKey
	}
	return s.issueToken(c.Name, c.ID)
}

// ParseToken validates accessToken and returns the client name it was issued to.
func (s *AuthService) ParseToken(accessToken string) (string, error) {
	if len(s.cfg.Secret) == 0 {
		return "", ErrNoSigningSecret
	}
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// HashAPIKey returns the bcrypt hash stored for an API key.
func HashAPIKey(apiKey string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("api key is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

func verifyAPIKey(hash, apiKey string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(apiKey))
}

func (s *AuthService) issueToken(name string, id int) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		ClientID: id,
	})
	return token.SignedString(s.cfg.Secret)
}
