package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
)

type sessionService struct {
	repo ports.SessionRepository
}

func NewSessionService(repo ports.SessionRepository) ports.SessionService {
	return &sessionService{
		repo: repo,
	}
}

func (s *sessionService) Create(ctx context.Context, input ports.CreateSessionInput) (*domain.Session, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}
	if len(input.Options) < 2 {
		return nil, fmt.Errorf("%w: at least two options are required", domain.ErrInvalidInput)
	}

	sessionID := uuid.New()
	now := time.Now()

	session := &domain.Session{
		ID:        sessionID,
		Code:      code,
		Title:     input.Title,
		IsOpen:    true,
		CreatedAt: now,
	}

	sort := 0
	for _, name := range input.Options {
		if name == "" {
			continue
		}
		session.Options = append(session.Options, domain.Option{
			ID:        uuid.New(),
			SessionID: sessionID,
			Name:      name,
			Sort:      sort,
			CreatedAt: now,
		})
		sort++
	}

	if len(session.Options) < 2 {
		return nil, fmt.Errorf("%w: at least two valid options are required", domain.ErrInvalidInput)
	}

	if err := s.repo.Save(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Resolve maps a short code to its session, option catalog included. It is
// side-effect free and called on every sync tick, so it must stay cheap.
func (s *sessionService) Resolve(ctx context.Context, code string) (*domain.Session, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *sessionService) SetOpen(ctx context.Context, code string, open bool) (*domain.Session, error) {
	session, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	if session.IsOpen != open {
		if err := s.repo.SetOpen(ctx, session.ID, open); err != nil {
			return nil, err
		}
		session.IsOpen = open
	}

	return session, nil
}
