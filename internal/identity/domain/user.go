// Package domain holds the identity entities.
package domain

import "time"

// User is an authenticated account. Requesters and patients are both users;
// a patient additionally has a patient record linked by user ID.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
