package repository

import (
	"context"
	"database/sql"

	"medgate/backend/internal/audit/domain"
)

// PostgresRepository implements Repository on a *sql.DB.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a Postgres-backed audit log repository.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, requester_id, action, resource, resource_id, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.RequesterID, entry.Action, entry.Resource, entry.ResourceID,
		entry.IP, entry.Metadata, entry.CreatedAt)
	return err
}
