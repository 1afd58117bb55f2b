// Package service implements the per-message pipeline: moderation, ordered
// persistence of the requester/assistant pair, and dispatch to the assistant.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"medgate/backend/internal/apperrors"
	sessiondomain "medgate/backend/internal/chatsession/domain"
	"medgate/backend/internal/message/domain"
	patientdomain "medgate/backend/internal/patient/domain"
)

// FlaggedPlaceholder replaces message content the moderator flags. The
// original text is discarded before anything is persisted, never after.
const FlaggedPlaceholder = "[message removed: inappropriate content]"

var tracer = otel.Tracer("medgate/backend/internal/message")

// MessageRepo is the minimal message repository needed by the pipeline.
type MessageRepo interface {
	Create(ctx context.Context, m *domain.Message) error
	ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error)
}

// SessionRepo is the minimal session repository needed by the pipeline.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// PatientRepo is the minimal patient repository needed for transcript gating.
type PatientRepo interface {
	GetByID(ctx context.Context, id string) (*patientdomain.Patient, error)
}

// Ledger answers the grant existence check for transcript reads.
type Ledger interface {
	HasAccess(ctx context.Context, requesterID, patientID string) (bool, error)
}

// Moderator screens content before persistence. A transport failure is
// interpreted per the fail-closed policy, never swallowed silently.
type Moderator interface {
	Check(ctx context.Context, text string) (flagged bool, err error)
}

// Assistant produces a reply for one (already moderated) requester message.
type Assistant interface {
	Reply(ctx context.Context, message string) (string, error)
}

// Service runs the message pipeline for active sessions.
type Service struct {
	messages          MessageRepo
	sessions          SessionRepo
	patients          PatientRepo
	ledger            Ledger
	moderator         Moderator
	assistant         Assistant
	locks             *sessionLocks
	moderationTimeout time.Duration
	assistantTimeout  time.Duration
	failClosed        bool
	now               func() time.Time
}

// NewService returns a message pipeline service. failClosed controls what a
// moderation transport failure does: true fails the post, false (legacy
// behavior) treats the content as unflagged.
func NewService(
	messages MessageRepo,
	sessions SessionRepo,
	patients PatientRepo,
	ledger Ledger,
	moderator Moderator,
	assistant Assistant,
	moderationTimeout, assistantTimeout time.Duration,
	failClosed bool,
) *Service {
	return &Service{
		messages:          messages,
		sessions:          sessions,
		patients:          patients,
		ledger:            ledger,
		moderator:         moderator,
		assistant:         assistant,
		locks:             newSessionLocks(),
		moderationTimeout: moderationTimeout,
		assistantTimeout:  assistantTimeout,
		failClosed:        failClosed,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// Post moderates and persists the requester message, obtains the assistant
// reply, persists it, and returns it. The requester message always commits
// before the assistant call is attempted; if the assistant fails, the
// requester message stays and the error surfaces as ErrUpstream. Posts to the
// same session are serialized so concurrent calls yield strictly ordered
// requester/assistant pairs.
func (s *Service) Post(ctx context.Context, sessionID, callerID, content string) (string, error) {
	ctx, span := tracer.Start(ctx, "message.Post")
	defer span.End()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if session.Ended() {
		return "", fmt.Errorf("session %s is ended: %w", sessionID, apperrors.ErrInvalidState)
	}
	if session.OwnerID != callerID {
		return "", fmt.Errorf("caller does not own session %s: %w", sessionID, apperrors.ErrAccessDenied)
	}

	lock := s.locks.get(sessionID)
	lock.Lock()
	defer lock.Unlock()

	content, err = s.moderate(ctx, content)
	if err != nil {
		return "", err
	}

	requesterMsg := &domain.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      domain.RoleRequester,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, requesterMsg); err != nil {
		return "", err
	}

	replyCtx, cancel := context.WithTimeout(ctx, s.assistantTimeout)
	defer cancel()
	reply, err := s.assistant.Reply(replyCtx, content)
	if err != nil {
		// The requester message stays; the caller may retry the whole post.
		return "", fmt.Errorf("assistant reply: %v: %w", err, apperrors.ErrUpstream)
	}

	assistantMsg := &domain.Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		CreatedAt: s.now(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		return "", err
	}
	return reply, nil
}

// moderate returns the content to persist: the original text when clean, the
// placeholder when flagged. Transport failures follow the fail-closed policy.
func (s *Service) moderate(ctx context.Context, content string) (string, error) {
	ctx, span := tracer.Start(ctx, "message.moderate")
	defer span.End()

	checkCtx, cancel := context.WithTimeout(ctx, s.moderationTimeout)
	defer cancel()
	flagged, err := s.moderator.Check(checkCtx, content)
	if err != nil {
		if s.failClosed {
			return "", fmt.Errorf("moderation: %v: %w", err, apperrors.ErrUpstream)
		}
		return content, nil
	}
	if flagged {
		return FlaggedPlaceholder, nil
	}
	return content, nil
}

// Transcript returns the session's messages in creation order. Readable by the
// session owner, the patient themself, or any requester holding a grant.
func (s *Service) Transcript(ctx context.Context, sessionID, callerID string) ([]*domain.Message, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if err := s.authorizeRead(ctx, session, callerID); err != nil {
		return nil, err
	}
	return s.messages.ListBySession(ctx, sessionID)
}

func (s *Service) authorizeRead(ctx context.Context, session *sessiondomain.Session, callerID string) error {
	if session.OwnerID == callerID {
		return nil
	}
	patient, err := s.patients.GetByID(ctx, session.PatientID)
	if err != nil {
		return err
	}
	if patient != nil && patient.UserID == callerID {
		return nil
	}
	ok, err := s.ledger.HasAccess(ctx, callerID, session.PatientID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no access to session %s: %w", session.ID, apperrors.ErrAccessDenied)
	}
	return nil
}
