// Package domain holds the telemetry event shape shared by the producer, the
// Loki worker, and emit call sites.
package domain

import "time"

// Event types emitted by the gating flows.
const (
	EventOTPIssued     = "otp_issued"
	EventOTPVerified   = "otp_verified"
	EventOTPDenied     = "otp_denied"
	EventSessionOpened = "session_opened"
	EventSessionClosed = "session_closed"
	EventMessagePosted = "message_posted"
)

// Event is one telemetry event, serialized as JSON on the wire. PatientID and
// SessionID are empty when not applicable. Metadata never carries raw OTP
// codes or message content.
type Event struct {
	ID          string            `json:"id"`
	EventType   string            `json:"eventType"`
	RequesterID string            `json:"requesterId,omitempty"`
	PatientID   string            `json:"patientId,omitempty"`
	SessionID   string            `json:"sessionId,omitempty"`
	Source      string            `json:"source"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}
