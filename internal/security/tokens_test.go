package security

import (
	"testing"
	"time"
)

func TestIssueAndValidateAccess(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	token, expiresAt, err := p.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatal("expected future expiry")
	}
	userID, err := p.ValidateAccess(token)
	if err != nil {
		t.Fatalf("ValidateAccess: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %s", userID)
	}
}

func TestValidateAccessRejectsGarbage(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	if _, err := p.ValidateAccess("not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestValidateAccessRejectsOtherIssuer(t *testing.T) {
	p1, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	p2, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	// p2 has a different key pair, so p1-signed tokens must fail.
	token, _, err := p1.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p2.ValidateAccess(token); err == nil {
		t.Fatal("expected error for token signed by different key")
	}
}

func TestValidateAccessRejectsExpired(t *testing.T) {
	p, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	p.accessTTL = -time.Minute
	token, _, err := p.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.ValidateAccess(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}
