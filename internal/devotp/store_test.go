package devotp

import (
	"context"
	"testing"
	"time"
)

func TestPutAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "challenge-1", "123456", time.Now().UTC().Add(time.Minute))

	code, ok := s.Get(ctx, "challenge-1")
	if !ok || code != "123456" {
		t.Fatalf("expected stored code, got %q ok=%v", code, ok)
	}
	if _, ok := s.Get(ctx, "challenge-404"); ok {
		t.Fatal("unknown challenge must miss")
	}
}

func TestGetDropsExpired(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Put(ctx, "challenge-1", "123456", time.Now().UTC().Add(time.Minute))

	s.nowF = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }
	if _, ok := s.Get(ctx, "challenge-1"); ok {
		t.Fatal("expired code must not be returned")
	}

	// Entry is gone even if the clock goes back.
	s.nowF = func() time.Time { return time.Now().UTC() }
	if _, ok := s.Get(ctx, "challenge-1"); ok {
		t.Fatal("expired entry must be dropped")
	}
}

func TestPutOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	expiry := time.Now().UTC().Add(time.Minute)
	s.Put(ctx, "challenge-1", "111111", expiry)
	s.Put(ctx, "challenge-1", "222222", expiry)

	code, ok := s.Get(ctx, "challenge-1")
	if !ok || code != "222222" {
		t.Fatalf("expected latest code, got %q", code)
	}
}
