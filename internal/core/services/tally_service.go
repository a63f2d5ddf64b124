package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
)

type tallyService struct {
	sessionRepo ports.SessionRepository
	voteRepo    ports.VoteRepository
}

func NewTallyService(sessionRepo ports.SessionRepository, voteRepo ports.VoteRepository) ports.TallyService {
	return &tallyService{
		sessionRepo: sessionRepo,
		voteRepo:    voteRepo,
	}
}

// ForSession recomputes the tally from the session's current vote rows. No
// aggregation state is kept anywhere; the same rows always produce the same
// tally, whichever observer derives it.
func (s *tallyService) ForSession(ctx context.Context, sessionID uuid.UUID) (domain.Tally, error) {
	options, err := s.sessionRepo.ListOptions(ctx, sessionID)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to list options: %w", err)
	}

	events, err := s.voteRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to list votes: %w", err)
	}

	return domain.NewTally(sessionID, options, events), nil
}

func (s *tallyService) ForCode(ctx context.Context, code string) (domain.Tally, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return domain.Tally{}, err
	}

	return s.ForSession(ctx, session.ID)
}
