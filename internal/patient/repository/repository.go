package repository

import (
	"context"

	"medgate/backend/internal/patient/domain"
)

// Repository defines persistence for patients and their chart summaries.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetByNationalCode(ctx context.Context, nationalCode string) (*domain.Patient, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Patient, error)
	Create(ctx context.Context, p *domain.Patient) error
	GetSummary(ctx context.Context, patientID string) (*domain.Summary, error)
	UpsertSummary(ctx context.Context, s *domain.Summary) error
}
