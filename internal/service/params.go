package service

import (
	"time"

	"fireplace_cli/internal/models"
)

// Operation names, as reported and journaled.
const (
	OpTurnOn         = "turn_on"
	OpTurnOff        = "turn_off"
	OpStatus         = "status"
	OpSetMode        = "set_mode"
	OpSetTemperature = "set_temperature"
)

// Report is the outcome of one public operation.
type Report struct {
	Operation string `json:"operation"`
	// Completed is false when the appliance still has to finish igniting; the caller
	// should repeat the operation later. For status queries it tells whether a status
	// was received at all.
	Completed bool                    `json:"completed"`
	Status    *models.ApplianceStatus `json:"status,omitempty"`
	Reachable bool                    `json:"reachable"`
	StartedAt time.Time               `json:"started_at"`
	Duration  time.Duration           `json:"duration_ns"`
	// Interim marks a status observed while the operation is still running.
	Interim bool `json:"interim,omitempty"`
}

// JournalFilter selects journal entries by time range and type.
type JournalFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", or one of the models.Entry* types
}
