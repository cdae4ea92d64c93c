package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fireplace_cli/internal/models"

	"github.com/google/uuid"
)

// sqliteTimestamp matches SQLite's TIMESTAMP text format.
const sqliteTimestamp = "2006-01-02 15:04:05"

const (
	insertJournalSQL = `
		INSERT INTO journal (id, occurred_at, type, description, meta)
		VALUES (?, ?, ?, ?, ?)
	`
	selectJournalSQL = `SELECT id, occurred_at, type, description, meta FROM journal`
)

type JournalSQLite struct {
	db *sql.DB
}

func NewJournalSQLite(db *sql.DB) *JournalSQLite { return &JournalSQLite{db: db} }

var _ JournalRepo = (*JournalSQLite)(nil)

// Append inserts e. Missing IDs and timestamps are filled in.
func (r *JournalSQLite) Append(ctx context.Context, e models.JournalEntry) error {
	if e.EntryID == "" {
		e.EntryID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	var meta *string
	if e.Metadata != nil {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal journal metadata: %w", err)
		}
		s := string(b)
		meta = &s
	}

	_, err := r.db.ExecContext(ctx, insertJournalSQL,
		e.EntryID,
		e.OccurredAt.Format(sqliteTimestamp),
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		meta,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry %s: %w", e.EntryID, err)
	}
	return nil
}

// List returns entries in [from, to] (zero bounds are open) of type typ (empty for
// any), oldest first.
func (r *JournalSQLite) List(ctx context.Context, from, to time.Time, typ string) ([]models.JournalEntry, error) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC().Format(sqliteTimestamp))
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC().Format(sqliteTimestamp))
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectJournalSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	out := make([]models.JournalEntry, 0, 32)
	for rows.Next() {
		var e models.JournalEntry
		var meta sql.NullString
		if err := rows.Scan(&e.EntryID, &e.OccurredAt, &e.Type, &e.Description, &meta); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.OccurredAt = e.OccurredAt.UTC()
		if meta.Valid && meta.String != "" {
			var v any
			if err := json.Unmarshal([]byte(meta.String), &v); err == nil {
				e.Metadata = v
			} else {
				e.Metadata = meta.String
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
