// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "medgate-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "medgate-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// OTPTTLRaw is the OTP challenge lifetime (e.g. "10m").
	OTPTTLRaw string `mapstructure:"OTP_TTL"`
	// OTPReturnToClient when true enables dev OTP mode: the raw code is kept
	// in memory for GET /v1/dev/otp/{challenge_id} instead of relying on SMS
	// delivery. Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// KavenegarAPIKey is the API key for the Kavenegar SMS gateway (OTP delivery).
	KavenegarAPIKey string `mapstructure:"KAVENEGAR_API_KEY"`
	// KavenegarSender is the optional sender line for Kavenegar.
	KavenegarSender string `mapstructure:"KAVENEGAR_SENDER"`
	// KavenegarBaseURL is the Kavenegar API base URL.
	KavenegarBaseURL string `mapstructure:"KAVENEGAR_BASE_URL"`

	// OpenAIAPIKey is the API key for the assistant/moderation/summarization backend.
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`
	// OpenAIChatModel is the model used for assistant replies.
	OpenAIChatModel string `mapstructure:"OPENAI_MODEL_CHAT"`
	// OpenAISummaryModel is the model used for summarization; falls back to OpenAIChatModel.
	OpenAISummaryModel string `mapstructure:"OPENAI_MODEL_SUMMARY"`

	// ModerationFailClosed controls moderation transport failures: when true the
	// message post fails; when false (default) content is treated as unflagged.
	// Safety-relevant; the default matches the legacy fail-open behavior.
	ModerationFailClosed bool `mapstructure:"MODERATION_FAIL_CLOSED"`
	// SingleActiveSession when true rejects opening a second active session for
	// the same (owner, patient) pair.
	SingleActiveSession bool `mapstructure:"SINGLE_ACTIVE_SESSION"`
	// ModerationTimeoutRaw bounds a single moderation call (e.g. "10s").
	ModerationTimeoutRaw string `mapstructure:"MODERATION_TIMEOUT"`
	// AssistantTimeoutRaw bounds a single assistant call (e.g. "30s").
	AssistantTimeoutRaw string `mapstructure:"ASSISTANT_TIMEOUT"`
	// SummaryTimeoutRaw bounds a single summarization call (e.g. "60s").
	SummaryTimeoutRaw string `mapstructure:"SUMMARY_TIMEOUT"`

	// OTLPEndpoint is the OTLP gRPC endpoint for traces/metrics/logs (empty disables).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses.
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the telemetry worker pushes events (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "medgate-auth")
	v.SetDefault("JWT_AUDIENCE", "medgate-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("OTP_TTL", "10m")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAVENEGAR_BASE_URL", "https://api.kavenegar.com/v1")
	v.SetDefault("OPENAI_MODEL_CHAT", "gpt-4o-mini")
	v.SetDefault("OPENAI_MODEL_SUMMARY", "")
	v.SetDefault("MODERATION_FAIL_CLOSED", false)
	v.SetDefault("SINGLE_ACTIVE_SESSION", false)
	v.SetDefault("MODERATION_TIMEOUT", "10s")
	v.SetDefault("ASSISTANT_TIMEOUT", "30s")
	v.SetDefault("SUMMARY_TIMEOUT", "60s")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "medgate-telemetry")
	v.SetDefault("KAFKA_GROUP_ID", "medgate-telemetry-worker")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return c.duration(c.JWTAccessTTL, 15*time.Minute)
}

// OTPTTL parses OTPTTLRaw as a time.Duration. Returns 10m if unset or invalid.
func (c *Config) OTPTTL() time.Duration {
	return c.duration(c.OTPTTLRaw, 10*time.Minute)
}

// ModerationTimeout bounds a single moderation call. Returns 10s if unset or invalid.
func (c *Config) ModerationTimeout() time.Duration {
	return c.duration(c.ModerationTimeoutRaw, 10*time.Second)
}

// AssistantTimeout bounds a single assistant call. Returns 30s if unset or invalid.
func (c *Config) AssistantTimeout() time.Duration {
	return c.duration(c.AssistantTimeoutRaw, 30*time.Second)
}

// SummaryTimeout bounds a single summarization call. Returns 60s if unset or invalid.
func (c *Config) SummaryTimeout() time.Duration {
	return c.duration(c.SummaryTimeoutRaw, 60*time.Second)
}

func (c *Config) duration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// A non-empty list means telemetry is enabled.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
