package services

import (
	"context"
	"time"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
)

type voteService struct {
	sessionRepo ports.SessionRepository
	voteRepo    ports.VoteRepository
}

func NewVoteService(sessionRepo ports.SessionRepository, voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		sessionRepo: sessionRepo,
		voteRepo:    voteRepo,
	}
}

// Cast replaces the device's current vote with the given option. Re-voting is
// supported by deleting the prior row and inserting a new one; there is no
// separate update path.
//
// The delete and the insert are two independent statements, not one
// transaction. Two concurrent casts from the same device can interleave and
// leave the device with zero or two rows; with one in-flight cast per device
// (the client contract) this does not occur, and the next successful cast
// converges either way. VoteRepository.ReplaceVote is the atomic alternative
// if that trade-off is ever revisited.
func (s *voteService) Cast(ctx context.Context, input ports.CastInput) error {
	session, err := s.sessionRepo.GetByCode(ctx, input.SessionCode)
	if err != nil {
		return err
	}

	if !session.IsOpen {
		return domain.ErrSessionClosed
	}

	if !session.HasOption(input.OptionID) {
		return domain.ErrInvalidOption
	}

	if err := s.voteRepo.DeleteVote(ctx, session.ID, input.DeviceID); err != nil {
		return err
	}

	vote := &domain.VoteEvent{
		SessionID: session.ID,
		OptionID:  input.OptionID,
		DeviceID:  input.DeviceID,
		CreatedAt: time.Now(),
	}

	// If this insert fails the prior vote is already gone; the caller is
	// told to retry, nothing is rolled back.
	return s.voteRepo.InsertVote(ctx, vote)
}

func (s *voteService) MyVote(ctx context.Context, code string, deviceID string) (*domain.VoteEvent, error) {
	session, err := s.sessionRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return s.voteRepo.GetByDevice(ctx, session.ID, deviceID)
}
