package models

import "time"

// Journal entry types, one per public operation.
const (
	EntryTurnOn         = "TURN_ON"
	EntryTurnOff        = "TURN_OFF"
	EntryStatus         = "STATUS"
	EntrySetMode        = "SET_MODE"
	EntrySetTemperature = "SET_TEMPERATURE"
)

// JournalEntry records one public operation and its outcome.
type JournalEntry struct {
	EntryID     string    `json:"entry_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
