package repository

import (
	"context"

	"medgate/backend/internal/message/domain"
)

// Repository defines persistence for chat messages.
type Repository interface {
	Create(ctx context.Context, m *domain.Message) error
	// ListBySession returns all messages for the session ordered by creation
	// time, earliest first.
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error)
}
