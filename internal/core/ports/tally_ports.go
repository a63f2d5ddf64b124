package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
)

type TallyService interface {
	ForSession(ctx context.Context, sessionID uuid.UUID) (domain.Tally, error)
	ForCode(ctx context.Context, code string) (domain.Tally, error)
}
