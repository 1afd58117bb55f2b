// Package service gates reads of patient chart summaries.
package service

import (
	"context"
	"fmt"

	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/patient/domain"
)

// PatientRepo is the minimal patient repository needed by the service.
type PatientRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetSummary(ctx context.Context, patientID string) (*domain.Summary, error)
}

// Ledger answers the grant existence check for non-self requesters.
type Ledger interface {
	HasAccess(ctx context.Context, requesterID, patientID string) (bool, error)
}

// Service serves patient chart data to authorized callers.
type Service struct {
	patients PatientRepo
	ledger   Ledger
}

// NewService returns a patient service.
func NewService(patients PatientRepo, ledger Ledger) *Service {
	return &Service{patients: patients, ledger: ledger}
}

// GetSummary returns the patient's chart summary. A patient may read their
// own; anyone else needs a grant.
func (s *Service) GetSummary(ctx context.Context, callerID, patientID string) (*domain.Summary, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, apperrors.ErrNotFound)
	}
	if patient.UserID != callerID {
		ok, err := s.ledger.HasAccess(ctx, callerID, patientID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no grant for patient %s: %w", patientID, apperrors.ErrAccessDenied)
		}
	}
	summary, err := s.patients.GetSummary(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("no summary for patient %s: %w", patientID, apperrors.ErrNotFound)
	}
	return summary, nil
}
