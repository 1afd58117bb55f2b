package repository

import (
	"context"
	"database/sql"
	"errors"

	"medgate/backend/internal/otp/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an OTP challenge repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the challenge. The challenge must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Challenge) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO otp_challenges (id, patient_id, code_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.PatientID, c.CodeHash, c.ExpiresAt, c.CreatedAt)
	return err
}

// GetLatestByPatient returns the newest challenge for the patient, or nil if none exists.
func (r *PostgresRepository) GetLatestByPatient(ctx context.Context, patientID string) (*domain.Challenge, error) {
	var c domain.Challenge
	err := r.db.QueryRowContext(ctx,
		`SELECT id, patient_id, code_hash, expires_at, created_at
		 FROM otp_challenges
		 WHERE patient_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, patientID).
		Scan(&c.ID, &c.PatientID, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
