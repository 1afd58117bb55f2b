package repository

import (
	"context"

	"medgate/backend/internal/summary/domain"
)

// Repository defines persistence for session summaries.
type Repository interface {
	// Create persists the summary. Returns apperrors.ErrAlreadySummarized when
	// a summary already exists for the session (unique violation), which is
	// what makes double-summarization impossible at the persistence layer.
	Create(ctx context.Context, s *domain.SessionSummary) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.SessionSummary, error)
}
