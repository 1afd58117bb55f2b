// Package service owns the session lifecycle: who may open a conversation
// about a patient and the exactly-once transition to Ended.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/chatsession/domain"
	patientdomain "medgate/backend/internal/patient/domain"
	summarydomain "medgate/backend/internal/summary/domain"
)

// SessionRepo is the minimal session repository needed by the session service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	End(ctx context.Context, id string, at time.Time) (bool, error)
	HasActiveByOwnerAndPatient(ctx context.Context, ownerID, patientID string) (bool, error)
}

// PatientRepo is the minimal patient repository needed by the session service.
type PatientRepo interface {
	GetByID(ctx context.Context, id string) (*patientdomain.Patient, error)
}

// Ledger answers the grant existence check for non-self requesters.
type Ledger interface {
	HasAccess(ctx context.Context, requesterID, patientID string) (bool, error)
}

// Summarizer produces and persists the single summary for an ended session.
// Invoked synchronously from Close so a summary exists once Close returns.
type Summarizer interface {
	Summarize(ctx context.Context, sessionID string) (*summarydomain.SessionSummary, error)
}

// Service implements session open/close with access gating.
type Service struct {
	sessions     SessionRepo
	patients     PatientRepo
	ledger       Ledger
	summarizer   Summarizer
	singleActive bool
	now          func() time.Time
}

// NewService returns a session service. singleActive enables the
// one-active-session-per-pair policy.
func NewService(sessions SessionRepo, patients PatientRepo, ledger Ledger, summarizer Summarizer, singleActive bool) *Service {
	return &Service{
		sessions:     sessions,
		patients:     patients,
		ledger:       ledger,
		summarizer:   summarizer,
		singleActive: singleActive,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Open creates an Active session for (requester, patient). A patient acting on
// themself needs no grant; anyone else needs at least one ledger grant.
func (s *Service) Open(ctx context.Context, requesterID, patientID, purpose string) (*domain.Session, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %s: %w", patientID, apperrors.ErrNotFound)
	}

	if patient.UserID != requesterID {
		ok, err := s.ledger.HasAccess(ctx, requesterID, patientID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no grant for patient %s: %w", patientID, apperrors.ErrAccessDenied)
		}
	}

	if s.singleActive {
		active, err := s.sessions.HasActiveByOwnerAndPatient(ctx, requesterID, patientID)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, fmt.Errorf("active session exists for patient %s: %w", patientID, apperrors.ErrInvalidState)
		}
	}

	session := &domain.Session{
		ID:        uuid.New().String(),
		OwnerID:   requesterID,
		PatientID: patientID,
		Purpose:   purpose,
		StartedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Close ends the session and synchronously triggers summarization. Only the
// owner may close; a second close (concurrent or not) fails with InvalidState
// because the end-stamp is a compare-and-swap.
func (s *Service) Close(ctx context.Context, sessionID, callerID string) (*summarydomain.SessionSummary, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if session.OwnerID != callerID {
		return nil, fmt.Errorf("caller does not own session %s: %w", sessionID, apperrors.ErrAccessDenied)
	}

	ended, err := s.sessions.End(ctx, sessionID, s.now())
	if err != nil {
		return nil, err
	}
	if !ended {
		return nil, fmt.Errorf("session %s already ended: %w", sessionID, apperrors.ErrInvalidState)
	}

	return s.summarizer.Summarize(ctx, sessionID)
}
