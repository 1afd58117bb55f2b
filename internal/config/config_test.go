package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("expected :8080 default, got %s", cfg.HTTPAddr)
	}
	if cfg.OTPTTL() != 10*time.Minute {
		t.Fatalf("expected 10m OTP TTL, got %s", cfg.OTPTTL())
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Fatalf("expected 15m access TTL, got %s", cfg.AccessTTL())
	}
	if cfg.ModerationFailClosed {
		t.Fatal("moderation must default to fail-open")
	}
	if cfg.SingleActiveSession {
		t.Fatal("single-active-session must default to off")
	}
	if cfg.OTPReturnToClient {
		t.Fatal("dev OTP mode must default to off")
	}
}

func TestLoadRejectsDevOTPInProduction(t *testing.T) {
	t.Setenv("OTP_RETURN_TO_CLIENT", "true")
	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for dev OTP mode in production")
	}
}

func TestLoadAllowsDevOTPInDevelopment(t *testing.T) {
	t.Setenv("OTP_RETURN_TO_CLIENT", "true")
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.OTPReturnToClient {
		t.Fatal("expected dev OTP mode enabled")
	}
}

func TestLoadRejectsBadBcryptCost(t *testing.T) {
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range bcrypt cost")
	}
}

func TestDurationFallback(t *testing.T) {
	t.Setenv("OTP_TTL", "garbage")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OTPTTL() != 10*time.Minute {
		t.Fatalf("invalid duration must fall back, got %s", cfg.OTPTTL())
	}
}

func TestTelemetryKafkaBrokersList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092, broker2:9092 ,")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Fatalf("unexpected brokers: %v", got)
	}
}
