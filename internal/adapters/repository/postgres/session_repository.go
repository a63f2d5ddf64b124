package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/showtally/api/internal/core/domain"
	"github.com/showtally/api/internal/core/ports"
)

type sessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{
		db: db,
	}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	querySession := `
		INSERT INTO sessions (id, code, title, is_open)
		VALUES ($1, $2, $3, $4)
	`
	_, err = tx.ExecContext(ctx, querySession, session.ID, session.Code, session.Title, session.IsOpen)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	queryOption := `
		INSERT INTO options (id, session_id, name, sort)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range session.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.SessionID, opt.Name, opt.Sort)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetByCode(ctx context.Context, code string) (*domain.Session, error) {
	query := `
		SELECT id, code, title, is_open, created_at
		FROM sessions
		WHERE code = $1
	`

	var session domain.Session
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&session.ID, &session.Code, &session.Title, &session.IsOpen, &session.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	options, err := r.ListOptions(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	session.Options = options

	return &session, nil
}

func (r *sessionRepository) ListOptions(ctx context.Context, sessionID uuid.UUID) ([]domain.Option, error) {
	query := `
		SELECT id, session_id, name, sort, created_at
		FROM options
		WHERE session_id = $1
		ORDER BY sort ASC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.ID, &opt.SessionID, &opt.Name, &opt.Sort, &opt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}

	return options, nil
}

func (r *sessionRepository) SetOpen(ctx context.Context, sessionID uuid.UUID, open bool) error {
	query := `UPDATE sessions SET is_open = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, sessionID, open)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}

	return nil
}
