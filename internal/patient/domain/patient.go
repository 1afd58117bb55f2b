package domain

import "time"

// Patient is the root identity record for a person whose chart is gated by OTP
// access. NationalCode is the unique national identifier used to address the
// patient when requesting a code.
type Patient struct {
	ID           string
	UserID       string
	NationalCode string
	Phone        string
	CreatedAt    time.Time
}

// Summary is the rolling machine-readable summary of a patient's chart
// (stored in patient_summaries, 1:1 with Patient).
type Summary struct {
	PatientID string
	Data      []byte // JSONB
	UpdatedAt time.Time
}
