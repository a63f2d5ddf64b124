package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
)

type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	GetByCode(ctx context.Context, code string) (*domain.Session, error)
	ListOptions(ctx context.Context, sessionID uuid.UUID) ([]domain.Option, error)
	SetOpen(ctx context.Context, sessionID uuid.UUID, open bool) error
}

type CreateSessionInput struct {
	Code    string
	Title   string
	Options []string
}

type SessionService interface {
	Create(ctx context.Context, input CreateSessionInput) (*domain.Session, error)
	Resolve(ctx context.Context, code string) (*domain.Session, error)
	SetOpen(ctx context.Context, code string, open bool) (*domain.Session, error)
}
