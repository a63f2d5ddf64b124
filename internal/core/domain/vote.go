package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteEvent records one device's current choice within one session. The
// casting protocol keeps at most one row per (SessionID, DeviceID) pair; the
// store itself does not enforce it.
type VoteEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	OptionID  uuid.UUID `json:"option_id"`
	DeviceID  string    `json:"device_id"`
	CreatedAt time.Time `json:"created_at"`
}
