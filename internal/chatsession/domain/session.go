package domain

import "time"

// Session is one moderated conversation between an owner-requester and the
// assistant, scoped to a patient. State is inferred from EndedAt: nil means
// Active, non-nil means Ended. Ended is terminal.
type Session struct {
	ID        string
	OwnerID   string
	PatientID string
	Purpose   string
	StartedAt time.Time
	EndedAt   *time.Time // nil while active
}

// Ended reports whether the session has been closed.
func (s *Session) Ended() bool {
	return s.EndedAt != nil
}
