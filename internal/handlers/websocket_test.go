package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"fireplace_cli/internal/display"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil, display.Celsius)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 30 * time.Second},
		{"interval_string_valid", "/ws?interval=45s", 45 * time.Second},
		{"interval_ms_valid", "/ws?interval_ms=15000", 15 * time.Second},
		{"interval_lower_bound", "/ws?interval=10s", 10 * time.Second},
		{"interval_upper_bound", "/ws?interval=10m", 10 * time.Minute},
		{"interval_too_small", "/ws?interval=1s", 30 * time.Second},
		{"interval_too_large", "/ws?interval=11m", 30 * time.Second},
		{"interval_ms_too_small", "/ws?interval_ms=200", 30 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 30 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 30 * time.Second},
		{"both_present_interval_wins", "/ws?interval=20s&interval_ms=15000", 20 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=12000", 12 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type envelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// newStreamServer serves /ws with the production middleware and bounds short
// enough for tests.
func newStreamServer(t *testing.T, s *service.Service) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, display.Celsius)
	h.stream = streamBounds{def: time.Second, min: 10 * time.Millisecond, max: time.Second}
	r := gin.New()
	r.GET("/ws", h.clientMiddleware, h.wsConnect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query url.Values) string {
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query.Encode()
	return u.String()
}

func TestWebSocket_RequiresToken(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{parseErr: errors.New("bad")}}
	srv := newStreamServer(t, s)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	_, resp, err := dialer.Dial(wsURL(srv, url.Values{"token": {"nope"}}), nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}

func TestWebSocket_StatusStream_InitialAndPeriodic(t *testing.T) {
	mon := &mockMonitoring{
		hasLatest: true,
		latest: service.Report{
			Operation: service.OpStatus,
			Completed: true,
			Reachable: true,
			Status:    &models.ApplianceStatus{Mode: models.ModeEco, CurrentTemperature: 21, GuardFlameOn: true},
		},
	}
	s := &service.Service{Authorization: &mockAuth{parseClient: "panel"}, Monitoring: mon}
	srv := newStreamServer(t, s)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(wsURL(srv, url.Values{"token": {"valid"}, "interval_ms": {"20"}}), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "status" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var rep service.Report
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if rep.Status == nil || rep.Status.Mode != models.ModeEco || !rep.Reachable {
		t.Fatalf("unexpected report: %+v", rep)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	env = envelope{}
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read second: %v", err)
	}
	if env.Type != "status" {
		t.Fatalf("expected type=status, got %+v", env)
	}
	if mon.polls != 0 {
		t.Fatalf("cached report should not trigger polls, got %d", mon.polls)
	}
}

func TestWebSocket_PollsWhenNothingCached(t *testing.T) {
	mon := &mockMonitoring{poll: service.Report{Operation: service.OpStatus, Completed: true}}
	s := &service.Service{Authorization: &mockAuth{parseClient: "panel"}, Monitoring: mon}
	srv := newStreamServer(t, s)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(wsURL(srv, url.Values{"token": {"valid"}}), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var env envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read initial: %v", err)
	}
	if env.Type != "status" {
		t.Fatalf("expected type=status, got %+v", env)
	}
}

func TestWebSocket_InitialPollError_Closes(t *testing.T) {
	mon := &mockMonitoring{pollErr: errors.New("boom")}
	s := &service.Service{Authorization: &mockAuth{parseClient: "panel"}, Monitoring: mon}
	srv := newStreamServer(t, s)

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(wsURL(srv, url.Values{"token": {"valid"}}), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// The server should close immediately after failing the initial poll
	_ = conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
}
