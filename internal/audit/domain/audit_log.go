// Package domain holds the audit log entity.
package domain

import "time"

// AuditLog is one recorded action against a protected resource.
type AuditLog struct {
	ID          string
	RequesterID string
	Action      string
	Resource    string
	ResourceID  string
	IP          string
	Metadata    string
	CreatedAt   time.Time
}
