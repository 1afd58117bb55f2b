package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"medgate/backend/internal/chatsession/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s       domain.Session
		endedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, patient_id, purpose, started_at, ended_at
		 FROM chat_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.OwnerID, &s.PatientID, &s.Purpose, &s.StartedAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, owner_id, patient_id, purpose, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, NULL)`,
		s.ID, s.OwnerID, s.PatientID, s.Purpose, s.StartedAt)
	return err
}

// End stamps ended_at iff still active; the WHERE clause is the CAS that lets
// exactly one concurrent close win.
func (r *PostgresRepository) End(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_sessions SET ended_at = $2 WHERE id = $1 AND ended_at IS NULL`,
		id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// HasActiveByOwnerAndPatient reports whether an active session exists for the pair.
func (r *PostgresRepository) HasActiveByOwnerAndPatient(ctx context.Context, ownerID, patientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM chat_sessions
			WHERE owner_id = $1 AND patient_id = $2 AND ended_at IS NULL
		 )`, ownerID, patientID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
