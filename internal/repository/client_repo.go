package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"fireplace_cli/internal/models"
)

type ClientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

var _ Clients = (*ClientRepository)(nil)

const (
	insertClientSQL       = `INSERT INTO api_clients (name, key_hash) VALUES (?, ?)`
	selectClientByNameSQL = `SELECT id, name, key_hash FROM api_clients WHERE name = ?`
)

// Create inserts a client and returns its ID.
func (r *ClientRepository) Create(name, keyHash string) (int, error) {
	res, err := r.db.Exec(insertClientSQL, name, keyHash)
	if err != nil {
		return 0, fmt.Errorf("insert client %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for client %q: %w", name, err)
	}
	return int(id), nil
}

// GetByName returns (nil, nil) when no client has that name.
func (r *ClientRepository) GetByName(name string) (*models.APIClient, error) {
	var c models.APIClient
	err := r.db.QueryRow(selectClientByNameSQL, name).Scan(&c.ID, &c.Name, &c.KeyHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select client %q: %w", name, err)
	}
	return &c, nil
}
