package handlers

import (
	"context"
	"net/http"
	"time"

	"fireplace_cli/internal/display"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	genTokenToken string
	genTokenErr   error
	parseClient   string
	parseErr      error

	lastGenClient  string
	lastGenKey     string
	lastParseToken string
}

func (m *mockAuth) RegisterClient(name, apiKey string) (int, error) {
	return 0, nil
}
func (m *mockAuth) GenerateToken(name, apiKey string) (string, error) {
	m.lastGenClient = name
	m.lastGenKey = apiKey
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseClient, m.parseErr
}

type mockFireplace struct {
	report service.Report
	err    error

	calls       []string
	lastMode    models.OperationMode
	lastCelsius float64
}

func (m *mockFireplace) reply(op string) (service.Report, error) {
	m.calls = append(m.calls, op)
	rep := m.report
	rep.Operation = op
	return rep, m.err
}

func (m *mockFireplace) TurnOn(ctx context.Context) (service.Report, error) {
	return m.reply(service.OpTurnOn)
}
func (m *mockFireplace) TurnOff(ctx context.Context) (service.Report, error) {
	return m.reply(service.OpTurnOff)
}
func (m *mockFireplace) Status(ctx context.Context) (service.Report, error) {
	return m.reply(service.OpStatus)
}
func (m *mockFireplace) SetMode(ctx context.Context, mode models.OperationMode) (service.Report, error) {
	m.lastMode = mode
	return m.reply(service.OpSetMode)
}
func (m *mockFireplace) SetTemperature(ctx context.Context, celsius float64) (service.Report, error) {
	m.lastCelsius = celsius
	return m.reply(service.OpSetTemperature)
}

type mockMonitoring struct {
	latest    service.Report
	hasLatest bool
	poll      service.Report
	pollErr   error
	polls     int
}

func (m *mockMonitoring) Latest() (service.Report, bool) {
	return m.latest, m.hasLatest
}
func (m *mockMonitoring) Poll(ctx context.Context) (service.Report, error) {
	m.polls++
	return m.poll, m.pollErr
}
func (m *mockMonitoring) Run(ctx context.Context, every time.Duration) {}

type mockJournal struct {
	resp     []models.JournalEntry
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockJournal) Record(ctx context.Context, e models.JournalEntry) error { return nil }
func (m *mockJournal) List(ctx context.Context, f service.JournalFilter) ([]models.JournalEntry, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, display.Celsius)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
