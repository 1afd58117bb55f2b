package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"medgate/backend/internal/apperrors"
	sessiondomain "medgate/backend/internal/chatsession/domain"
	"medgate/backend/internal/message/domain"
	patientdomain "medgate/backend/internal/patient/domain"
)

type memMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func (r *memMessageRepo) Create(ctx context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m2 := *m
	r.messages = append(r.messages, &m2)
	return nil
}

func (r *memMessageRepo) ListBySession(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			m2 := *m
			out = append(out, &m2)
		}
	}
	return out, nil
}

type memSessionRepo struct {
	m map[string]*sessiondomain.Session
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	if s, ok := r.m[id]; ok {
		s2 := *s
		return &s2, nil
	}
	return nil, nil
}

type memPatientRepo struct {
	byID map[string]*patientdomain.Patient
}

func (r *memPatientRepo) GetByID(ctx context.Context, id string) (*patientdomain.Patient, error) {
	return r.byID[id], nil
}

type fakeLedger struct {
	granted map[string]bool
}

func (l *fakeLedger) HasAccess(ctx context.Context, requesterID, patientID string) (bool, error) {
	return l.granted[requesterID+"/"+patientID], nil
}

// fakeModerator flags content containing "bad" and fails on content
// containing "outage".
type fakeModerator struct{}

func (fakeModerator) Check(ctx context.Context, text string) (bool, error) {
	if strings.Contains(text, "outage") {
		return false, errors.New("moderation unavailable")
	}
	return strings.Contains(text, "bad"), nil
}

type fakeAssistant struct {
	mu       sync.Mutex
	received []string
	err      error
}

func (a *fakeAssistant) Reply(ctx context.Context, message string) (string, error) {
	a.mu.Lock()
	a.received = append(a.received, message)
	a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	return "re: " + message, nil
}

func newTestService(failClosed bool) (*Service, *memMessageRepo, *memSessionRepo, *fakeAssistant) {
	messages := &memMessageRepo{}
	now := time.Now().UTC()
	ended := now.Add(-time.Minute)
	sessions := &memSessionRepo{m: map[string]*sessiondomain.Session{
		"session-1": {ID: "session-1", OwnerID: "owner-1", PatientID: "patient-1", StartedAt: now},
		"session-ended": {
			ID: "session-ended", OwnerID: "owner-1", PatientID: "patient-1",
			StartedAt: now.Add(-time.Hour), EndedAt: &ended,
		},
	}}
	patients := &memPatientRepo{byID: map[string]*patientdomain.Patient{
		"patient-1": {ID: "patient-1", UserID: "user-patient"},
	}}
	ledger := &fakeLedger{granted: map[string]bool{}}
	assistant := &fakeAssistant{}
	svc := NewService(messages, sessions, patients, ledger, fakeModerator{}, assistant,
		time.Second, time.Second, failClosed)
	return svc, messages, sessions, assistant
}

func TestPostCleanTextVerbatim(t *testing.T) {
	svc, messages, _, _ := newTestService(false)
	reply, err := svc.Post(context.Background(), "session-1", "owner-1", "I have a headache")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if reply != "re: I have a headache" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(messages.messages) != 2 {
		t.Fatalf("expected requester+assistant messages, got %d", len(messages.messages))
	}
	if messages.messages[0].Role != domain.RoleRequester || messages.messages[0].Content != "I have a headache" {
		t.Fatalf("requester message altered: %+v", messages.messages[0])
	}
	if messages.messages[1].Role != domain.RoleAssistant || messages.messages[1].Content != reply {
		t.Fatalf("assistant message mismatch: %+v", messages.messages[1])
	}
}

func TestPostFlaggedContentReplaced(t *testing.T) {
	svc, messages, _, assistant := newTestService(false)
	if _, err := svc.Post(context.Background(), "session-1", "owner-1", "something bad"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if messages.messages[0].Content != FlaggedPlaceholder {
		t.Fatalf("flagged content must be replaced, got %q", messages.messages[0].Content)
	}
	for _, m := range messages.messages {
		if strings.Contains(m.Content, "something bad") {
			t.Fatal("original flagged text must never be persisted")
		}
	}
	// The assistant sees the placeholder, not the original text.
	if len(assistant.received) != 1 || assistant.received[0] != FlaggedPlaceholder {
		t.Fatalf("assistant must receive placeholder, got %v", assistant.received)
	}
}

func TestPostModerationFailureOpen(t *testing.T) {
	svc, messages, _, _ := newTestService(false)
	if _, err := svc.Post(context.Background(), "session-1", "owner-1", "outage text"); err != nil {
		t.Fatalf("fail-open Post: %v", err)
	}
	if messages.messages[0].Content != "outage text" {
		t.Fatalf("fail-open must keep original content, got %q", messages.messages[0].Content)
	}
}

func TestPostModerationFailureClosed(t *testing.T) {
	svc, messages, _, _ := newTestService(true)
	if _, err := svc.Post(context.Background(), "session-1", "owner-1", "outage text"); !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(messages.messages) != 0 {
		t.Fatal("fail-closed must persist nothing")
	}
}

func TestPostAssistantFailureKeepsRequesterMessage(t *testing.T) {
	svc, messages, _, assistant := newTestService(false)
	assistant.err = errors.New("model overloaded")
	if _, err := svc.Post(context.Background(), "session-1", "owner-1", "hello"); !errors.Is(err, apperrors.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(messages.messages) != 1 || messages.messages[0].Role != domain.RoleRequester {
		t.Fatalf("requester message must survive assistant failure, got %+v", messages.messages)
	}
}

func TestPostGuards(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	if _, err := svc.Post(context.Background(), "session-404", "owner-1", "hi"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Post(context.Background(), "session-ended", "owner-1", "hi"); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, err := svc.Post(context.Background(), "session-1", "someone-else", "hi"); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestConcurrentPostsKeepPairsOrdered(t *testing.T) {
	svc, _, _, _ := newTestService(false)

	const posts = 8
	var wg sync.WaitGroup
	for i := 0; i < posts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.Post(context.Background(), "session-1", "owner-1", fmt.Sprintf("message %d", n)); err != nil {
				t.Errorf("Post %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	transcript, err := svc.Transcript(context.Background(), "session-1", "owner-1")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if len(transcript) != posts*2 {
		t.Fatalf("expected %d messages, got %d", posts*2, len(transcript))
	}
	// Every pair is adjacent: requester at even indexes, its reply right after.
	for i := 0; i < len(transcript); i += 2 {
		req, rep := transcript[i], transcript[i+1]
		if req.Role != domain.RoleRequester || rep.Role != domain.RoleAssistant {
			t.Fatalf("pair %d roles out of order: %s then %s", i/2, req.Role, rep.Role)
		}
		if rep.Content != "re: "+req.Content {
			t.Fatalf("pair %d interleaved: %q answered by %q", i/2, req.Content, rep.Content)
		}
	}
}

func TestTranscriptGating(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	if _, err := svc.Post(context.Background(), "session-1", "owner-1", "hi"); err != nil {
		t.Fatalf("Post: %v", err)
	}

	if _, err := svc.Transcript(context.Background(), "session-1", "owner-1"); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := svc.Transcript(context.Background(), "session-1", "user-patient"); err != nil {
		t.Fatalf("patient self read: %v", err)
	}
	if _, err := svc.Transcript(context.Background(), "session-1", "stranger"); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for stranger, got %v", err)
	}
}

func TestTranscriptWithGrant(t *testing.T) {
	messages := &memMessageRepo{}
	sessions := &memSessionRepo{m: map[string]*sessiondomain.Session{
		"session-1": {ID: "session-1", OwnerID: "owner-1", PatientID: "patient-1", StartedAt: time.Now().UTC()},
	}}
	patients := &memPatientRepo{byID: map[string]*patientdomain.Patient{
		"patient-1": {ID: "patient-1", UserID: "user-patient"},
	}}
	ledger := &fakeLedger{granted: map[string]bool{"clinician-1/patient-1": true}}
	svc := NewService(messages, sessions, patients, ledger, fakeModerator{}, &fakeAssistant{},
		time.Second, time.Second, false)

	if _, err := svc.Transcript(context.Background(), "session-1", "clinician-1"); err != nil {
		t.Fatalf("granted read: %v", err)
	}
}
