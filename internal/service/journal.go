package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fireplace_cli/internal/models"
	"fireplace_cli/internal/repository"
)

type JournalService struct {
	repo repository.JournalRepo
}

// NewJournalService returns a journal backed by repo. A nil repo yields a disabled
// journal: Record is a no-op and List fails with ErrJournalDisabled.
func NewJournalService(repo repository.JournalRepo) *JournalService {
	return &JournalService{repo: repo}
}

var (
	ErrJournalDisabled  = errors.New("journal is disabled: set JOURNAL_PATH")
	errInvalidTimeRange = errors.New("invalid time range: from must be <= to")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func normalizeEntryType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f JournalFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeEntryType(f.Type), nil
}

// Enabled reports whether entries are persisted.
func (s *JournalService) Enabled() bool { return s.repo != nil }

func (s *JournalService) Record(ctx context.Context, e models.JournalEntry) error {
	if s.repo == nil {
		return nil
	}
	e.Type = normalizeEntryType(e.Type)
	return s.repo.Append(ctx, e)
}

func (s *JournalService) List(ctx context.Context, f JournalFilter) ([]models.JournalEntry, error) {
	if s.repo == nil {
		return nil, ErrJournalDisabled
	}
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.repo.List(ctx, from, to, typ)
}
