package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/summary/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session summary repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the summary; a second insert for the same session maps to
// ErrAlreadySummarized.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.SessionSummary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_summaries (id, session_id, text_summary, payload, tokens_used, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.SessionID, s.TextSummary, s.Payload, s.TokensUsed, s.GeneratedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("session %s: %w", s.SessionID, apperrors.ErrAlreadySummarized)
		}
		return err
	}
	return nil
}

// GetBySessionID returns the summary for the session, or nil if not found.
func (r *PostgresRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	var s domain.SessionSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, text_summary, payload, tokens_used, generated_at
		 FROM session_summaries WHERE session_id = $1`, sessionID).
		Scan(&s.ID, &s.SessionID, &s.TextSummary, &s.Payload, &s.TokensUsed, &s.GeneratedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
