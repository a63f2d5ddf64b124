package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is one polling event, addressed by a short human-readable code.
// While IsOpen is true the session accepts votes; once closed it is read-only.
type Session struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Title     string    `json:"title,omitempty"`
	IsOpen    bool      `json:"is_open"`
	Options   []Option  `json:"options,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Option is one candidate a voter may choose within a session. Options are
// presented ascending by Sort, creation order breaking ties.
type Option struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Name      string    `json:"name"`
	Sort      int       `json:"sort"`
	CreatedAt time.Time `json:"created_at"`
}

// HasOption reports whether the given option belongs to this session's catalog.
func (s *Session) HasOption(optionID uuid.UUID) bool {
	for _, opt := range s.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
