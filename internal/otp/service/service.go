// Package service implements OTP challenge issuance and verification, the two
// operations that gate a requester's access to a patient chart.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	accessdomain "medgate/backend/internal/access/domain"
	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/otp"
	otpdomain "medgate/backend/internal/otp/domain"
	patientdomain "medgate/backend/internal/patient/domain"
)

// PatientRepo is the minimal patient repository needed by the OTP service.
type PatientRepo interface {
	GetByNationalCode(ctx context.Context, nationalCode string) (*patientdomain.Patient, error)
}

// ChallengeRepo is the minimal challenge repository needed by the OTP service.
type ChallengeRepo interface {
	Create(ctx context.Context, c *otpdomain.Challenge) error
	GetLatestByPatient(ctx context.Context, patientID string) (*otpdomain.Challenge, error)
}

// GrantRepo is the minimal grant repository needed by the OTP service.
type GrantRepo interface {
	Create(ctx context.Context, g *accessdomain.Grant) error
}

// Notifier delivers the raw code out of band (SMS). Delivery failure never
// invalidates the already-created challenge; the caller retries by requesting
// a new code.
type Notifier interface {
	Send(ctx context.Context, destination, text string) (bool, error)
}

// DevStore holds raw codes for dev-mode retrieval by challenge ID. Nil in production.
type DevStore interface {
	Put(ctx context.Context, challengeID, code string, expiresAt time.Time)
}

// IssueResult is the outcome of issuing a challenge.
type IssueResult struct {
	ChallengeID string
	PatientID   string
	RawCode     string
}

// Service issues and verifies OTP challenges and writes access grants.
type Service struct {
	patients   PatientRepo
	challenges ChallengeRepo
	grants     GrantRepo
	notifier   Notifier
	devStore   DevStore
	ttl        time.Duration
	now        func() time.Time
}

// NewService returns an OTP service. notifier and devStore may be nil.
func NewService(patients PatientRepo, challenges ChallengeRepo, grants GrantRepo, notifier Notifier, devStore DevStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		patients:   patients,
		challenges: challenges,
		grants:     grants,
		notifier:   notifier,
		devStore:   devStore,
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a new challenge for the patient addressed by national code and
// sends the raw code by SMS (best-effort). Earlier challenges are not touched;
// they become irrelevant because verification targets the newest one only.
func (s *Service) Issue(ctx context.Context, nationalCode string) (*IssueResult, error) {
	patient, err := s.patients.GetByNationalCode(ctx, nationalCode)
	if err != nil {
		return nil, err
	}
	if patient == nil {
		return nil, fmt.Errorf("patient %q: %w", nationalCode, apperrors.ErrNotFound)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, err
	}
	now := s.now()
	challenge := &otpdomain.Challenge{
		ID:        uuid.New().String(),
		PatientID: patient.ID,
		CodeHash:  otp.HashCode(code),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return nil, err
	}

	if s.devStore != nil {
		s.devStore.Put(ctx, challenge.ID, code, challenge.ExpiresAt)
	}
	if s.notifier != nil {
		if ok, err := s.notifier.Send(ctx, patient.Phone, fmt.Sprintf("Your access code: %s", code)); err != nil || !ok {
			// The challenge stays verifiable; the requester re-issues to retry delivery.
			logrus.WithError(err).WithField("challenge_id", challenge.ID).Warn("otp: sms delivery failed")
		}
	}

	return &IssueResult{ChallengeID: challenge.ID, PatientID: patient.ID, RawCode: code}, nil
}

// Verify checks the candidate code against the patient's most recent challenge
// and, on success, appends an access grant for (requester, patient). Failure is
// side-effect-free. A wrong or expired code is always denied; denial never
// depends on pre-existing grants.
func (s *Service) Verify(ctx context.Context, requesterID, nationalCode, code string) (patientID string, err error) {
	patient, err := s.patients.GetByNationalCode(ctx, nationalCode)
	if err != nil {
		return "", err
	}
	if patient == nil {
		return "", fmt.Errorf("patient %q: %w", nationalCode, apperrors.ErrNotFound)
	}

	challenge, err := s.challenges.GetLatestByPatient(ctx, patient.ID)
	if err != nil {
		return "", err
	}
	if challenge == nil {
		return "", fmt.Errorf("no challenge for patient %s: %w", patient.ID, apperrors.ErrNotFound)
	}

	if !otp.CodeEqual(code, challenge.CodeHash) || !s.now().Before(challenge.ExpiresAt) {
		return "", fmt.Errorf("otp verification failed: %w", apperrors.ErrAccessDenied)
	}

	grant := &accessdomain.Grant{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		PatientID:   patient.ID,
		CreatedAt:   s.now(),
	}
	if err := s.grants.Create(ctx, grant); err != nil {
		return "", err
	}
	return patient.ID, nil
}
