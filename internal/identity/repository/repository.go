// Package repository persists users.
package repository

import (
	"context"

	"medgate/backend/internal/identity/domain"
)

// Repository is the user persistence interface. Lookups return (nil, nil)
// when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
