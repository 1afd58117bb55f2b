package domain

import "time"

// SessionSummary is the single summary row for an ended session (1:1 via a
// unique constraint on session_id). Created exactly once at close time and
// never updated afterward.
type SessionSummary struct {
	ID          string
	SessionID   string
	TextSummary string
	Payload     []byte // collaborator response stored verbatim as JSONB
	TokensUsed  int
	GeneratedAt time.Time
}
