package domain

import "time"

// Grant is one append-only access authorization: the requester may read the
// patient's data. Multiple rows for the same pair are allowed (one per
// successful OTP verification); grants are never revoked or expired.
type Grant struct {
	ID          string
	RequesterID string
	PatientID   string
	CreatedAt   time.Time
}
