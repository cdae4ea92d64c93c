package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fireplace_cli/internal/display"
	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil, display.Celsius)
	r.GET("/secure", h.clientMiddleware, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "client": clientName(c)})
	})
	return r
}

func TestClientMiddleware_Errors(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		query    string
		parseErr error
		errMsg   string
	}{
		{name: "missing header", errMsg: "missing Authorization header"},
		{name: "invalid scheme", header: "Token abc", errMsg: "invalid Authorization header format"},
		{name: "bearer without token", header: "Bearer", errMsg: "invalid Authorization header format"},
		{name: "bearer blank token", header: "Bearer   ", errMsg: "invalid Authorization header format"},
		{name: "expired/invalid token", header: "Bearer expired", parseErr: errors.New("expired"), errMsg: "invalid or expired token"},
		{name: "invalid query token", query: "?token=bad", parseErr: errors.New("bad"), errMsg: "invalid or expired token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &service.Service{Authorization: &mockAuth{parseErr: tc.parseErr}}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401 (body=%s)", w.Code, w.Body.String())
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.errMsg {
				t.Fatalf("error message: got %q, want %q", out.Error, tc.errMsg)
			}
		})
	}
}

func TestClientMiddleware_SuccessSetsClientAndProceeds(t *testing.T) {
	cases := []struct {
		name   string
		header string
		query  string
	}{
		{name: "header", header: "Bearer good-token"},
		{name: "query fallback", query: "?token=good-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{parseClient: "panel"}
			r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
			}
			var resp struct {
				OK     bool   `json:"ok"`
				Client string `json:"client"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !resp.OK || resp.Client != "panel" {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if auth.lastParseToken != "good-token" {
				t.Fatalf("ParseToken got %q, want %q", auth.lastParseToken, "good-token")
			}
		})
	}
}

func TestClientMiddleware_HeaderWinsOverQuery(t *testing.T) {
	auth := &mockAuth{parseClient: "panel"}
	r := newMiddlewareOnlyRouter(&service.Service{Authorization: auth})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure?token=from-query", nil)
	req.Header.Set("Authorization", "Bearer from-header")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if auth.lastParseToken != "from-header" {
		t.Fatalf("ParseToken got %q", auth.lastParseToken)
	}
}
