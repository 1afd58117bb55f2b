// Package access exposes the append-only ledger of requester-to-patient grants.
package access

import (
	"context"

	accessrepo "medgate/backend/internal/access/repository"
)

// Ledger answers the single access question: does at least one grant row exist
// for the (requester, patient) pair right now. It is a present-time existence
// check only; self-access bypasses the ledger entirely and is enforced by the
// session service, not here.
type Ledger struct {
	repo accessrepo.Repository
}

// NewLedger returns a Ledger backed by the given grant repository.
func NewLedger(repo accessrepo.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// HasAccess reports whether the requester holds any grant for the patient.
func (l *Ledger) HasAccess(ctx context.Context, requesterID, patientID string) (bool, error) {
	return l.repo.ExistsForPair(ctx, requesterID, patientID)
}
