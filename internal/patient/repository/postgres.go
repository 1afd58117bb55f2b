package repository

import (
	"context"
	"database/sql"
	"errors"

	"medgate/backend/internal/patient/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a patient repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const patientColumns = `id, user_id, national_code, phone, created_at`

// GetByID returns the patient for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

// GetByNationalCode returns the patient with the given national code, or nil if not found.
func (r *PostgresRepository) GetByNationalCode(ctx context.Context, nationalCode string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE national_code = $1`, nationalCode)
	return scanPatient(row)
}

// GetByUserID returns the patient owned by the given user, or nil if the user
// has no patient record (e.g. a clinician).
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*domain.Patient, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+patientColumns+` FROM patients WHERE user_id = $1`, userID)
	return scanPatient(row)
}

// Create persists the patient. The patient must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Patient) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patients (id, user_id, national_code, phone, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.UserID, p.NationalCode, p.Phone, p.CreatedAt)
	return err
}

// GetSummary returns the chart summary for the patient, or nil if none exists.
func (r *PostgresRepository) GetSummary(ctx context.Context, patientID string) (*domain.Summary, error) {
	var s domain.Summary
	err := r.db.QueryRowContext(ctx,
		`SELECT patient_id, data, updated_at FROM patient_summaries WHERE patient_id = $1`,
		patientID).Scan(&s.PatientID, &s.Data, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSummary inserts or replaces the patient's chart summary.
func (r *PostgresRepository) UpsertSummary(ctx context.Context, s *domain.Summary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO patient_summaries (patient_id, data, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (patient_id) DO UPDATE SET data = $2, updated_at = $3`,
		s.PatientID, s.Data, s.UpdatedAt)
	return err
}

func scanPatient(row *sql.Row) (*domain.Patient, error) {
	var p domain.Patient
	err := row.Scan(&p.ID, &p.UserID, &p.NationalCode, &p.Phone, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
