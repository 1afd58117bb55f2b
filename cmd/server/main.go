// Server runs the patient chat gating API: auth, OTP access grants, chat
// sessions with moderation, and session-end summarization.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	accessledger "medgate/backend/internal/access"
	accessrepo "medgate/backend/internal/access/repository"
	"medgate/backend/internal/audit"
	auditrepo "medgate/backend/internal/audit/repository"
	chatsessionhandler "medgate/backend/internal/chatsession/handler"
	chatsessionrepo "medgate/backend/internal/chatsession/repository"
	chatsessionservice "medgate/backend/internal/chatsession/service"
	"medgate/backend/internal/config"
	"medgate/backend/internal/db"
	"medgate/backend/internal/devotp"
	healthhandler "medgate/backend/internal/health/handler"
	identityhandler "medgate/backend/internal/identity/handler"
	identityrepo "medgate/backend/internal/identity/repository"
	identityservice "medgate/backend/internal/identity/service"
	"medgate/backend/internal/llm"
	messagehandler "medgate/backend/internal/message/handler"
	messagerepo "medgate/backend/internal/message/repository"
	messageservice "medgate/backend/internal/message/service"
	otphandler "medgate/backend/internal/otp/handler"
	otprepo "medgate/backend/internal/otp/repository"
	otpservice "medgate/backend/internal/otp/service"
	patienthandler "medgate/backend/internal/patient/handler"
	patientrepo "medgate/backend/internal/patient/repository"
	patientservice "medgate/backend/internal/patient/service"
	"medgate/backend/internal/security"
	"medgate/backend/internal/server"
	"medgate/backend/internal/sms"
	summaryhandler "medgate/backend/internal/summary/handler"
	summaryrepo "medgate/backend/internal/summary/repository"
	summaryservice "medgate/backend/internal/summary/service"
	"medgate/backend/internal/telemetry"
	telemetryotel "medgate/backend/internal/telemetry/otel"
	telemetryproducer "medgate/backend/internal/telemetry/producer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}
	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "medgate-backend", cfg.OTLPInsecure)
	if err != nil {
		logrus.WithError(err).Fatal("otel setup")
	}
	providers.SetGlobal()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("database")
	}
	defer conn.Close()

	privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logrus.WithError(err).Fatal("JWT_PRIVATE_KEY")
	}
	publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		logrus.WithError(err).Fatal("JWT_PUBLIC_KEY")
	}
	tokens := security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	users := identityrepo.NewPostgresRepository(conn)
	patients := patientrepo.NewPostgresRepository(conn)
	challenges := otprepo.NewPostgresRepository(conn)
	grants := accessrepo.NewPostgresRepository(conn)
	sessions := chatsessionrepo.NewPostgresRepository(conn)
	messages := messagerepo.NewPostgresRepository(conn)
	summaries := summaryrepo.NewPostgresRepository(conn)

	ledger := accessledger.NewLedger(grants)
	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(conn), nil)

	kafkaProducer, err := telemetryproducer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		logrus.WithError(err).Fatal("kafka producer")
	}
	var emitter telemetry.EventEmitter
	if kafkaProducer != nil {
		emitter = kafkaProducer
		defer kafkaProducer.Close()
	}

	ai := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIChatModel, cfg.OpenAISummaryModel)

	var notifier otpservice.Notifier
	if cfg.KavenegarAPIKey != "" {
		notifier = sms.NewKavenegarClient(cfg.KavenegarAPIKey, cfg.KavenegarBaseURL, cfg.KavenegarSender)
	}
	var devStore devotp.Store
	if cfg.OTPReturnToClient {
		devStore = devotp.NewMemoryStore()
	}

	authSvc := identityservice.NewAuthService(users, hasher, tokens)
	otpSvc := otpservice.NewService(patients, challenges, grants, notifier, devStore, cfg.OTPTTL())
	summarySvc := summaryservice.NewService(messages, summaries, sessions, patients, ledger, ai, cfg.SummaryTimeout())
	sessionSvc := chatsessionservice.NewService(sessions, patients, ledger, summarySvc, cfg.SingleActiveSession)
	messageSvc := messageservice.NewService(messages, sessions, patients, ledger, ai, ai,
		cfg.ModerationTimeout(), cfg.AssistantTimeout(), cfg.ModerationFailClosed)
	patientSvc := patientservice.NewService(patients, ledger)

	router := server.NewRouter(server.Handlers{
		Auth:    identityhandler.NewHTTP(authSvc),
		OTP:     otphandler.NewHTTP(otpSvc, devStore, emitter, auditor),
		Session: chatsessionhandler.NewHTTP(sessionSvc, emitter, auditor),
		Message: messagehandler.NewHTTP(messageSvc, emitter),
		Summary: summaryhandler.NewHTTP(summarySvc),
		Patient: patienthandler.NewHTTP(patientSvc, auditor),
		Health:  healthhandler.NewHTTP(conn),
	}, tokens, cfg.OTPReturnToClient)

	if err := server.New(cfg.HTTPAddr, router).Run(ctx); err != nil {
		logrus.WithError(err).Error("http server")
	}

	// Let in-flight async telemetry emits finish before tearing down providers.
	time.Sleep(telemetry.ShutdownDrainDuration)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("otel shutdown")
	}
}
