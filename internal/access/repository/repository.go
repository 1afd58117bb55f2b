package repository

import (
	"context"

	"medgate/backend/internal/access/domain"
)

// Repository defines persistence for access grants.
type Repository interface {
	Create(ctx context.Context, g *domain.Grant) error
	// ExistsForPair reports whether at least one grant row exists for the
	// exact (requester, patient) pair.
	ExistsForPair(ctx context.Context, requesterID, patientID string) (bool, error)
}
