package repository

import (
	"context"
	"database/sql"

	"medgate/backend/internal/access/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an access grant repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the grant. The grant must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, g *domain.Grant) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO access_grants (id, requester_id, patient_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		g.ID, g.RequesterID, g.PatientID, g.CreatedAt)
	return err
}

// ExistsForPair reports whether any grant row exists for the pair.
func (r *PostgresRepository) ExistsForPair(ctx context.Context, requesterID, patientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM access_grants WHERE requester_id = $1 AND patient_id = $2
		 )`, requesterID, patientID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
