package repository

import (
	"context"

	"medgate/backend/internal/otp/domain"
)

// Repository defines persistence for OTP challenges.
type Repository interface {
	Create(ctx context.Context, c *domain.Challenge) error
	// GetLatestByPatient returns the most recently created challenge for the
	// patient, or nil if none was ever issued. Verification consults only this
	// row (single-active-challenge policy).
	GetLatestByPatient(ctx context.Context, patientID string) (*domain.Challenge, error)
}
