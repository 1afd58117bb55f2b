package repository

import (
	"context"
	"time"

	"medgate/backend/internal/chatsession/domain"
)

// Repository defines persistence for chat sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	// End stamps ended_at iff the session is still active. Returns true when
	// this call performed the transition; false when the session was already
	// ended (or does not exist). This is the compare-and-swap that makes close
	// exactly-once under concurrency.
	End(ctx context.Context, id string, at time.Time) (bool, error)
	// HasActiveByOwnerAndPatient reports whether an active session exists for
	// the (owner, patient) pair. Used by the single-active-session policy.
	HasActiveByOwnerAndPatient(ctx context.Context, ownerID, patientID string) (bool, error)
}
