package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
)

type VoteRepository interface {
	// DeleteVote removes the device's current vote; it is a no-op when the
	// device has no vote in the session.
	DeleteVote(ctx context.Context, sessionID uuid.UUID, deviceID string) error
	InsertVote(ctx context.Context, vote *domain.VoteEvent) error
	// ReplaceVote performs delete+insert in a single transaction. It is the
	// atomic alternative to the two-step path used by the casting protocol.
	ReplaceVote(ctx context.Context, vote *domain.VoteEvent) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.VoteEvent, error)
	GetByDevice(ctx context.Context, sessionID uuid.UUID, deviceID string) (*domain.VoteEvent, error)
}

type CastInput struct {
	SessionCode string
	OptionID    uuid.UUID
	DeviceID    string
}

type VoteService interface {
	Cast(ctx context.Context, input CastInput) error
	MyVote(ctx context.Context, code string, deviceID string) (*domain.VoteEvent, error)
}
