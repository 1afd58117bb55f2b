// Package repository persists audit log entries.
package repository

import (
	"context"

	"medgate/backend/internal/audit/domain"
)

// Repository is the audit log persistence interface.
type Repository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}
