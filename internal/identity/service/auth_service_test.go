package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"medgate/backend/internal/identity/domain"
	"medgate/backend/internal/security"
)

type memUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*domain.User{}}
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email], nil
}

func (r *memUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEmail[u.Email] = u
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("token provider: %v", err)
	}
	users := newMemUserRepo()
	return NewAuthService(users, security.NewHasher(bcrypt.MinCost), tokens), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	reg, err := svc.Register(context.Background(), "Dev@Example.com", "password123", "Dev User")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.UserID == "" {
		t.Fatal("expected user ID")
	}
	if reg.AccessToken != "" {
		t.Fatal("register must not issue a token")
	}

	// Email is normalized, so a different casing logs in.
	login, err := svc.Login(context.Background(), "dev@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.AccessToken == "" || login.UserID != reg.UserID {
		t.Fatalf("unexpected login result: %+v", login)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(context.Background(), "not-an-email", "password123", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(context.Background(), "a@b.com", "password123", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.com", "password456", ""); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	if _, err := svc.Register(context.Background(), "a@b.com", "password123", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@b.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
