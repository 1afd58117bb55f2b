// Seed inserts development sample data: a clinician user, a patient user with
// a patient record, and a chart summary. Idempotent: skips inserts when the
// dev clinician (clinician@example.com) already exists.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"medgate/backend/internal/config"
	"medgate/backend/internal/db"
	identitydomain "medgate/backend/internal/identity/domain"
	identityrepo "medgate/backend/internal/identity/repository"
	patientdomain "medgate/backend/internal/patient/domain"
	patientrepo "medgate/backend/internal/patient/repository"
	"medgate/backend/internal/security"
)

const (
	clinicianEmail = "clinician@example.com"
	patientEmail   = "patient@example.com"
	devPassword    = "password123"

	clinicianUserID = "dev-user-clinician"
	patientUserID   = "dev-user-patient"
	devPatientID    = "dev-patient-001"
	devNationalCode = "1234567890"
	devPatientPhone = "+989120000000"
)

const devChartSummary = `{"complaint":"recurring headache","duration":"2 weeks","medications":["ibuprofen 400mg"],"allergies":["penicillin"]}`

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("database")
	}
	defer conn.Close()

	ctx := context.Background()
	users := identityrepo.NewPostgresRepository(conn)
	patients := patientrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, clinicianEmail)
	if err != nil {
		logrus.WithError(err).Fatal("seed: lookup")
	}
	if existing != nil {
		logrus.Info("seed: dev data already present, skipping")
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		logrus.WithError(err).Fatal("seed: hash")
	}

	now := time.Now().UTC()
	for _, u := range []*identitydomain.User{
		{ID: clinicianUserID, Email: clinicianEmail, Name: "Dev Clinician", PasswordHash: hash, CreatedAt: now},
		{ID: patientUserID, Email: patientEmail, Name: "Dev Patient", PasswordHash: hash, CreatedAt: now},
	} {
		if err := users.Create(ctx, u); err != nil {
			logrus.WithError(err).Fatalf("seed: user %s", u.Email)
		}
	}

	if err := patients.Create(ctx, &patientdomain.Patient{
		ID:           devPatientID,
		UserID:       patientUserID,
		NationalCode: devNationalCode,
		Phone:        devPatientPhone,
		CreatedAt:    now,
	}); err != nil {
		logrus.WithError(err).Fatal("seed: patient")
	}

	if err := patients.UpsertSummary(ctx, &patientdomain.Summary{
		PatientID: devPatientID,
		Data:      []byte(devChartSummary),
		UpdatedAt: now,
	}); err != nil {
		logrus.WithError(err).Fatal("seed: chart summary")
	}

	logrus.WithFields(logrus.Fields{
		"clinician": clinicianEmail,
		"patient":   patientEmail,
		"password":  devPassword,
	}).Info("seed: dev data inserted")
}
