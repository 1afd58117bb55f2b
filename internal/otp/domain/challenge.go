package domain

import "time"

// Challenge is one issued OTP (stored in otp_challenges). Rows are immutable
// and append-only; a newer challenge supersedes older ones for the same
// patient without deleting them.
type Challenge struct {
	ID        string
	PatientID string
	CodeHash  string
	ExpiresAt time.Time
	CreatedAt time.Time
}
