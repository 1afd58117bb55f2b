package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/chatsession/domain"
	patientdomain "medgate/backend/internal/patient/domain"
	summarydomain "medgate/backend/internal/summary/domain"
)

type memSessionRepo struct {
	mu sync.Mutex
	m  map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{m: map[string]*domain.Session{}}
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.m[id]; ok {
		s2 := *s
		return &s2, nil
	}
	return nil, nil
}

func (r *memSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s2 := *s
	r.m[s.ID] = &s2
	return nil
}

// End mirrors the compare-and-swap semantics of the SQL implementation: the
// stamp lands only if the session is still active.
func (r *memSessionRepo) End(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok || s.EndedAt != nil {
		return false, nil
	}
	s.EndedAt = &at
	return true, nil
}

func (r *memSessionRepo) HasActiveByOwnerAndPatient(ctx context.Context, ownerID, patientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.m {
		if s.OwnerID == ownerID && s.PatientID == patientID && s.EndedAt == nil {
			return true, nil
		}
	}
	return false, nil
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

type fakeSummarizer struct {
	calls int32
	err   error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, sessionID string) (*summarydomain.SessionSummary, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return &summarydomain.SessionSummary{
		ID:          "summary-1",
		SessionID:   sessionID,
		TextSummary: "patient reported a headache",
		Payload:     []byte(`{"text_summary":"patient reported a headache"}`),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func newTestService(singleActive bool) (*Service, *memSessionRepo, *fakeLedger, *fakeSummarizer) {
	sessions := newMemSessionRepo()
	patients := &memPatientRepo{byID: map[string]*patientdomain.Patient{
		"patient-1": {ID: "patient-1", UserID: "user-patient", NationalCode: "1234567890"},
	}}
	ledger := &fakeLedger{granted: map[string]bool{}}
	summarizer := &fakeSummarizer{}
	svc := NewService(sessions, patients, ledger, summarizer, singleActive)
	return svc, sessions, ledger, summarizer
}

func TestOpenSelfNeedsNoGrant(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	session, err := svc.Open(context.Background(), "user-patient", "patient-1", "checkup")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if session.OwnerID != "user-patient" || session.PatientID != "patient-1" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.EndedAt != nil {
		t.Fatal("new session must be active")
	}
}

func TestOpenWithoutGrantDenied(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	if _, err := svc.Open(context.Background(), "clinician-1", "patient-1", ""); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestOpenWithGrant(t *testing.T) {
	svc, _, ledger, _ := newTestService(false)
	ledger.granted["clinician-1/patient-1"] = true
	if _, err := svc.Open(context.Background(), "clinician-1", "patient-1", "follow-up"); err != nil {
		t.Fatalf("Open with grant: %v", err)
	}
}

func TestOpenUnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	if _, err := svc.Open(context.Background(), "user-patient", "patient-404", ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenSingleActivePolicy(t *testing.T) {
	svc, _, _, _ := newTestService(true)
	if _, err := svc.Open(context.Background(), "user-patient", "patient-1", ""); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := svc.Open(context.Background(), "user-patient", "patient-1", ""); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for second active session, got %v", err)
	}
}

func TestCloseProducesSummaryOnce(t *testing.T) {
	svc, _, _, summarizer := newTestService(false)
	session, err := svc.Open(context.Background(), "user-patient", "patient-1", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	summary, err := svc.Close(context.Background(), session.ID, "user-patient")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if summary.SessionID != session.ID {
		t.Fatalf("summary for wrong session: %s", summary.SessionID)
	}
	if got := atomic.LoadInt32(&summarizer.calls); got != 1 {
		t.Fatalf("expected 1 summarizer call, got %d", got)
	}
	// Second close must fail without summarizing again.
	if _, err := svc.Close(context.Background(), session.ID, "user-patient"); !errors.Is(err, apperrors.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double close, got %v", err)
	}
	if got := atomic.LoadInt32(&summarizer.calls); got != 1 {
		t.Fatalf("double close must not re-summarize, got %d calls", got)
	}
}

func TestCloseByNonOwnerDenied(t *testing.T) {
	svc, _, _, summarizer := newTestService(false)
	session, err := svc.Open(context.Background(), "user-patient", "patient-1", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := svc.Close(context.Background(), session.ID, "clinician-1"); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if atomic.LoadInt32(&summarizer.calls) != 0 {
		t.Fatal("denied close must not summarize")
	}
}

func TestCloseUnknownSession(t *testing.T) {
	svc, _, _, _ := newTestService(false)
	if _, err := svc.Close(context.Background(), "session-404", "user-patient"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentCloseSummarizesOnce(t *testing.T) {
	svc, _, _, summarizer := newTestService(false)
	session, err := svc.Open(context.Background(), "user-patient", "patient-1", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	const closers = 8
	var wg sync.WaitGroup
	var succeeded int32
	for i := 0; i < closers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Close(context.Background(), session.ID, "user-patient"); err == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful close, got %d", succeeded)
	}
	if got := atomic.LoadInt32(&summarizer.calls); got != 1 {
		t.Fatalf("expected exactly 1 summarizer call, got %d", got)
	}
}
