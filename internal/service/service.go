package service

import (
	"context"
	"time"

	"fireplace_cli/internal/models"
	"fireplace_cli/internal/repository"
)

// Fireplace exposes the five public appliance operations. Each one opens its own
// session and runs to completion even if ctx is canceled.
type Fireplace interface {
	TurnOn(ctx context.Context) (Report, error)
	TurnOff(ctx context.Context) (Report, error)
	Status(ctx context.Context) (Report, error)
	SetMode(ctx context.Context, mode models.OperationMode) (Report, error)
	SetTemperature(ctx context.Context, celsius float64) (Report, error)
}

// Monitoring keeps the most recent report and can poll the appliance periodically.
type Monitoring interface {
	Latest() (Report, bool)
	Poll(ctx context.Context) (Report, error)
	Run(ctx context.Context, every time.Duration)
}

// Journal exposes the append-only operation log.
type Journal interface {
	Record(ctx context.Context, e models.JournalEntry) error
	List(ctx context.Context, f JournalFilter) ([]models.JournalEntry, error)
}

type Authorization interface {
	RegisterClient(name, apiKey string) (int, error)
	GenerateToken(name, apiKey string) (string, error)
	ParseToken(accessToken string) (string, error)
}

// StatusPublisher receives every final report.
type StatusPublisher interface {
	Publish(ctx context.Context, r Report) error
}

// Service aggregates the sub-services used by the HTTP and MCP surfaces.
type Service struct {
	Fireplace
	Monitoring
	Journal
	Authorization
}

// NewService wires the repositories into the sub-services. repos may be nil when
// the journal is disabled.
func NewService(repos *repository.Repository, fireplace Fireplace, monitor Monitoring, auth AuthConfig) *Service {
	var (
		journalRepo repository.JournalRepo
		clients     repository.Clients
	)
	if repos != nil {
		journalRepo = repos.Journal
		clients = repos.Clients
	}
	return &Service{
		Fireplace:     fireplace,
		Monitoring:    monitor,
		Journal:       NewJournalService(journalRepo),
		Authorization: NewAuthService(clients, auth),
	}
}
