package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/patient/domain"
)

type memPatientRepo struct {
	byID      map[string]*domain.Patient
	summaries map[string]*domain.Summary
}

func (r *memPatientRepo) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return r.byID[id], nil
}

func (r *memPatientRepo) GetSummary(ctx context.Context, patientID string) (*domain.Summary, error) {
	return r.summaries[patientID], nil
}

type fakeLedger struct {
	granted map[string]bool
}

func (l *fakeLedger) HasAccess(ctx context.Context, requesterID, patientID string) (bool, error) {
	return l.granted[requesterID+"/"+patientID], nil
}

func newTestService() (*Service, *fakeLedger) {
	patients := &memPatientRepo{
		byID: map[string]*domain.Patient{
			"patient-1": {ID: "patient-1", UserID: "user-patient"},
			"patient-2": {ID: "patient-2", UserID: "user-other"},
		},
		summaries: map[string]*domain.Summary{
			"patient-1": {PatientID: "patient-1", Data: []byte(`{"complaint":"headache"}`), UpdatedAt: time.Now().UTC()},
		},
	}
	ledger := &fakeLedger{granted: map[string]bool{}}
	return NewService(patients, ledger), ledger
}

func TestGetSummarySelf(t *testing.T) {
	svc, _ := newTestService()
	summary, err := svc.GetSummary(context.Background(), "user-patient", "patient-1")
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if summary.PatientID != "patient-1" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestGetSummaryRequiresGrant(t *testing.T) {
	svc, ledger := newTestService()
	if _, err := svc.GetSummary(context.Background(), "clinician-1", "patient-1"); !errors.Is(err, apperrors.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	ledger.granted["clinician-1/patient-1"] = true
	if _, err := svc.GetSummary(context.Background(), "clinician-1", "patient-1"); err != nil {
		t.Fatalf("granted read: %v", err)
	}
}

func TestGetSummaryMissing(t *testing.T) {
	svc, ledger := newTestService()
	if _, err := svc.GetSummary(context.Background(), "user-patient", "patient-404"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown patient, got %v", err)
	}
	ledger.granted["clinician-1/patient-2"] = true
	if _, err := svc.GetSummary(context.Background(), "clinician-1", "patient-2"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing chart summary, got %v", err)
	}
}
