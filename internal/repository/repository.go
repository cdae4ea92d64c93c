package repository

import (
	"context"
	"database/sql"
	"time"

	"fireplace_cli/internal/models"
)

// Clients stores API clients allowed to request bearer tokens.
type Clients interface {
	Create(name, keyHash string) (int, error)
	GetByName(name string) (*models.APIClient, error)
}

// JournalRepo is the append-only operation journal.
type JournalRepo interface {
	Append(ctx context.Context, e models.JournalEntry) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.JournalEntry, error)
}

type Repository struct {
	Journal JournalRepo
	Clients Clients
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Journal: NewJournalSQLite(db),
		Clients: NewClientRepository(db),
	}
}
