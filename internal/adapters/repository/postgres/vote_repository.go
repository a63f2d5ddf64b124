package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
)

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) DeleteVote(ctx context.Context, sessionID uuid.UUID, deviceID string) error {
	query := `DELETE FROM votes WHERE session_id = $1 AND device_id = $2`
	_, err := r.db.ExecContext(ctx, query, sessionID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (r *voteRepository) InsertVote(ctx context.Context, vote *domain.VoteEvent) error {
	query := `
		INSERT INTO votes (session_id, option_id, device_id)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, vote.SessionID, vote.OptionID, vote.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// ReplaceVote runs the delete and the insert in one transaction, closing the
// interleaving window the two-step path leaves open.
func (r *voteRepository) ReplaceVote(ctx context.Context, vote *domain.VoteEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM votes WHERE session_id = $1 AND device_id = $2`,
		vote.SessionID, vote.DeviceID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO votes (session_id, option_id, device_id) VALUES ($1, $2, $3)`,
		vote.SessionID, vote.OptionID, vote.DeviceID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *voteRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.VoteEvent, error) {
	query := `
		SELECT session_id, option_id, device_id, created_at
		FROM votes
		WHERE session_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var events []domain.VoteEvent
	for rows.Next() {
		var ev domain.VoteEvent
		if err := rows.Scan(&ev.SessionID, &ev.OptionID, &ev.DeviceID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}

	return events, nil
}

func (r *voteRepository) GetByDevice(ctx context.Context, sessionID uuid.UUID, deviceID string) (*domain.VoteEvent, error) {
	query := `
		SELECT session_id, option_id, device_id, created_at
		FROM votes
		WHERE session_id = $1 AND device_id = $2
		LIMIT 1
	`

	var ev domain.VoteEvent
	err := r.db.QueryRowContext(ctx, query, sessionID, deviceID).Scan(
		&ev.SessionID, &ev.OptionID, &ev.DeviceID, &ev.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}

	return &ev, nil
}
