package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
)

// In-memory repositories mirroring the store contract, including the
// delete/insert split the casting protocol relies on.

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *fakeSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.Code]; ok {
		return errors.New("duplicate code")
	}
	r.sessions[session.Code] = session
	return nil
}

func (r *fakeSessionRepo) GetByCode(ctx context.Context, code string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[code]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) ListOptions(ctx context.Context, sessionID uuid.UUID) ([]domain.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.ID == sessionID {
			return session.Options, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) SetOpen(ctx context.Context, sessionID uuid.UUID, open bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.ID == sessionID {
			session.IsOpen = open
			return nil
		}
	}
	return domain.ErrSessionNotFound
}

type fakeVoteRepo struct {
	mu     sync.Mutex
	events []domain.VoteEvent

	failInsert error
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{}
}

func (r *fakeVoteRepo) DeleteVote(ctx context.Context, sessionID uuid.UUID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.events[:0]
	for _, ev := range r.events {
		if ev.SessionID == sessionID && ev.DeviceID == deviceID {
			continue
		}
		kept = append(kept, ev)
	}
	r.events = kept
	return nil
}

func (r *fakeVoteRepo) InsertVote(ctx context.Context, vote *domain.VoteEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failInsert != nil {
		return r.failInsert
	}
	r.events = append(r.events, *vote)
	return nil
}

func (r *fakeVoteRepo) ReplaceVote(ctx context.Context, vote *domain.VoteEvent) error {
	if err := r.DeleteVote(ctx, vote.SessionID, vote.DeviceID); err != nil {
		return err
	}
	return r.InsertVote(ctx, vote)
}

func (r *fakeVoteRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.VoteEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.VoteEvent
	for _, ev := range r.events {
		if ev.SessionID == sessionID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *fakeVoteRepo) GetByDevice(ctx context.Context, sessionID uuid.UUID, deviceID string) (*domain.VoteEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.SessionID == sessionID && ev.DeviceID == deviceID {
			copied := ev
			return &copied, nil
		}
	}
	return nil, domain.ErrVoteNotFound
}
