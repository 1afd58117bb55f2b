// Package service implements session-end summarization: one summary per
// session, produced synchronously when the session closes.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"medgate/backend/internal/apperrors"
	sessiondomain "medgate/backend/internal/chatsession/domain"
	msgdomain "medgate/backend/internal/message/domain"
	patientdomain "medgate/backend/internal/patient/domain"
	"medgate/backend/internal/summary/domain"
)

// degradedSummaryText marks a summary that could not be produced because the
// collaborator failed or returned an unparsable payload. Stored instead of
// blocking session close; a missing summary is worse than a degraded one.
const degradedSummaryText = "summary unavailable: summarization failed"

// MessageRepo is the minimal message repository needed by the summarizer.
type MessageRepo interface {
	ListBySession(ctx context.Context, sessionID string) ([]*msgdomain.Message, error)
}

// SummaryRepo is the minimal summary repository needed by the summarizer.
type SummaryRepo interface {
	Create(ctx context.Context, s *domain.SessionSummary) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.SessionSummary, error)
}

// SessionRepo is the minimal session repository needed for summary reads.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// PatientRepo is the minimal patient repository needed for summary reads.
type PatientRepo interface {
	GetByID(ctx context.Context, id string) (*patientdomain.Patient, error)
}

// Ledger answers the grant existence check for summary reads.
type Ledger interface {
	HasAccess(ctx context.Context, requesterID, patientID string) (bool, error)
}

// Collaborator submits an ordered transcript to the summarization backend and
// returns the raw response payload, expected to be JSON with at least
// text_summary and token_count fields. Extra fields are preserved verbatim.
type Collaborator interface {
	Summarize(ctx context.Context, transcript []msgdomain.TranscriptEntry) (string, error)
}

// collaboratorPayload is the subset of the response the service extracts;
// the full payload is stored untouched.
type collaboratorPayload struct {
	TextSummary string `json:"text_summary"`
	TokenCount  int    `json:"token_count"`
}

// Service produces and serves session summaries.
type Service struct {
	messages     MessageRepo
	summaries    SummaryRepo
	sessions     SessionRepo
	patients     PatientRepo
	ledger       Ledger
	collaborator Collaborator
	timeout      time.Duration
	now          func() time.Time
}

// NewService returns a summarizer service.
func NewService(
	messages MessageRepo,
	summaries SummaryRepo,
	sessions SessionRepo,
	patients PatientRepo,
	ledger Ledger,
	collaborator Collaborator,
	timeout time.Duration,
) *Service {
	return &Service{
		messages:     messages,
		summaries:    summaries,
		sessions:     sessions,
		patients:     patients,
		ledger:       ledger,
		collaborator: collaborator,
		timeout:      timeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Summarize persists exactly one summary for the session. An empty transcript
// short-circuits to an empty summary without calling the collaborator. A
// collaborator failure or unparsable payload degrades to a failure-marked
// summary rather than blocking close. A second call fails with
// ErrAlreadySummarized from the persistence layer.
func (s *Service) Summarize(ctx context.Context, sessionID string) (*domain.SessionSummary, error) {
	messages, err := s.messages.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &domain.SessionSummary{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Payload:     []byte("{}"),
		GeneratedAt: s.now(),
	}

	if len(messages) > 0 {
		transcript := make([]msgdomain.TranscriptEntry, len(messages))
		for i, m := range messages {
			transcript[i] = msgdomain.TranscriptEntry{Role: string(m.Role), Content: m.Content}
		}
		summary.TextSummary, summary.Payload, summary.TokensUsed = s.generate(ctx, sessionID, transcript)
	}

	if err := s.summaries.Create(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// generate calls the collaborator and extracts the summary fields, degrading
// on any failure.
func (s *Service) generate(ctx context.Context, sessionID string, transcript []msgdomain.TranscriptEntry) (text string, payload []byte, tokens int) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.collaborator.Summarize(callCtx, transcript)
	if err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Warn("summary: collaborator call failed")
		return degradedSummaryText, degradedPayload(err.Error()), 0
	}

	var parsed collaboratorPayload
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		logrus.WithError(err).WithField("session_id", sessionID).Warn("summary: unparsable collaborator payload")
		return degradedSummaryText, degradedPayload("unparsable payload"), 0
	}
	return parsed.TextSummary, []byte(raw), parsed.TokenCount
}

func degradedPayload(reason string) []byte {
	b, err := json.Marshal(map[string]string{"error": reason})
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Get returns the summary for the session. Readable by the session owner, the
// patient themself, or any requester holding a grant.
func (s *Service) Get(ctx context.Context, sessionID, callerID string) (*domain.SessionSummary, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}

	if session.OwnerID != callerID {
		patient, err := s.patients.GetByID(ctx, session.PatientID)
		if err != nil {
			return nil, err
		}
		if patient == nil || patient.UserID != callerID {
			ok, err := s.ledger.HasAccess(ctx, callerID, session.PatientID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("no access to session %s: %w", sessionID, apperrors.ErrAccessDenied)
			}
		}
	}

	summary, err := s.summaries.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("no summary for session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return summary, nil
}
