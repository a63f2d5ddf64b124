package domain

import (
	"math"

	"github.com/google/uuid"
)

// Tally is the derived per-option count for a session. It is never stored:
// every observer recomputes it from the current vote rows, so any two
// observers reading the same rows derive the identical tally.
type Tally struct {
	SessionID uuid.UUID         `json:"session_id"`
	Counts    map[uuid.UUID]int `json:"counts"`
	Total     int               `json:"total"`
}

// NewTally derives a tally from the session's option catalog and its current
// vote events. Every catalog option is present in Counts, zero when unvoted;
// an empty event list is a valid all-zero tally.
func NewTally(sessionID uuid.UUID, options []Option, events []VoteEvent) Tally {
	counts := make(map[uuid.UUID]int, len(options))
	for _, opt := range options {
		counts[opt.ID] = 0
	}
	for _, ev := range events {
		counts[ev.OptionID]++
	}

	return Tally{
		SessionID: sessionID,
		Counts:    counts,
		Total:     len(events),
	}
}

// Percentage returns the rounded share of the total held by optionID, or 0
// when no votes have been cast.
func (t Tally) Percentage(optionID uuid.UUID) int {
	if t.Total == 0 {
		return 0
	}
	return int(math.Round(float64(t.Counts[optionID]) / float64(t.Total) * 100))
}
