package telemetry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"medgate/backend/internal/telemetry/domain"
)

type countingEmitter struct {
	calls int32
}

func (e *countingEmitter) Emit(ctx context.Context, event *domain.Event) error {
	atomic.AddInt32(&e.calls, 1)
	return nil
}

func TestEmitAsyncNilSafe(t *testing.T) {
	// Must not panic or spawn goroutines.
	EmitAsync(nil, context.Background(), NewEvent(domain.EventOTPIssued, "r", "p", ""))
	EmitAsync(&countingEmitter{}, context.Background(), nil)
}

func TestEmitAsyncDelivers(t *testing.T) {
	e := &countingEmitter{}
	EmitAsync(e, context.Background(), NewEvent(domain.EventSessionOpened, "r", "p", "s"))

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&e.calls) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("emit never happened")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewEventFields(t *testing.T) {
	ev := NewEvent(domain.EventOTPVerified, "req-1", "pat-1", "sess-1")
	if ev.ID == "" {
		t.Fatal("expected generated ID")
	}
	if ev.EventType != domain.EventOTPVerified || ev.RequesterID != "req-1" ||
		ev.PatientID != "pat-1" || ev.SessionID != "sess-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Source != Source {
		t.Fatalf("expected source %q, got %q", Source, ev.Source)
	}
	if ev.CreatedAt.IsZero() {
		t.Fatal("expected timestamp")
	}
}
