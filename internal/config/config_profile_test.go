package config

import (
	"strings"
	"testing"
	"time"
)

func validDevConfig() *Config {
	return &Config{
		Env:                          "development",
		DatabaseURL:                  "sqlite://file::memory:",
		PasswordHashDriver:           "bcrypt",
		PasswordHashWorkFactor:       12,
		HashMaxConcurrency:           4,
		PinBytes:                     4,
		AuthEmailPinTTL:              15 * time.Minute,
		AuthPasswordResetPinTTL:      10 * time.Minute,
		NotifierDriver:               "log",
		NotifierTimeout:              10 * time.Second,
		CredentialLockTTL:            10 * time.Second,
		CredentialLockWait:           3 * time.Second,
		RedisAddr:                    "localhost:6379",
		RedisPoolSize:                10,
		RedisMinRetryBackoff:         8 * time.Millisecond,
		RedisMaxRetryBackoff:         512 * time.Millisecond,
		OTELTraceSamplingRatio:       1.0,
		OTELMetricsExportInterval:    10 * time.Second,
		OTELLogLevel:                 "info",
		ReadinessProbeTimeout:        1 * time.Second,
		ShutdownTimeout:              20 * time.Second,
		ShutdownHTTPDrainTimeout:     10 * time.Second,
		ShutdownObservabilityTimeout: 8 * time.Second,
	}
}

func TestValidateDevelopmentProfileAllowsRelaxedSettings(t *testing.T) {
	cfg := validDevConfig()
	cfg.AuthEmailVerifyBaseURL = "http://localhost:3000/verify"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected relaxed dev validation to pass: %v", err)
	}
}

func TestValidateProdProfileStrictRules(t *testing.T) {
	cfg := validDevConfig()
	cfg.Env = "production"
	cfg.AuthEmailVerifyBaseURL = "http://reviews.example.com/verify"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected strict prod validation errors")
	}
	for _, want := range []string{
		"sqlite DATABASE_URL",
		"NOTIFIER_DRIVER=log",
		"AUTH_EMAIL_VERIFY_BASE_URL must use https",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in aggregated error, got %v", want, err)
		}
	}
}

func TestValidateProdWithResendNotifierPasses(t *testing.T) {
	cfg := validDevConfig()
	cfg.Env = "production"
	cfg.DatabaseURL = "postgres://app:secret@db:5432/reviews?sslmode=require"
	cfg.NotifierDriver = "resend"
	cfg.ResendAPIKey = "re_test_key"
	cfg.ResendBaseURL = "https://api.resend.com"
	cfg.MailFrom = "Reviews <no-reply@reviews.example.com>"
	cfg.AuthPasswordResetBaseURL = "https://reviews.example.com/reset"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected prod validation to pass: %v", err)
	}
}

func TestValidatePinTTLBounds(t *testing.T) {
	cases := []struct {
		name  string
		email time.Duration
		reset time.Duration
		ok    bool
	}{
		{name: "defaults", email: 15 * time.Minute, reset: 10 * time.Minute, ok: true},
		{name: "zero email", email: 0, reset: 10 * time.Minute},
		{name: "negative reset", email: 15 * time.Minute, reset: -time.Second},
		{name: "reset over a day", email: 15 * time.Minute, reset: 25 * time.Hour},
		{name: "exactly a day", email: 24 * time.Hour, reset: 24 * time.Hour, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validDevConfig()
			cfg.AuthEmailPinTTL = tc.email
			cfg.AuthPasswordResetPinTTL = tc.reset
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected ttl validation error")
			}
		})
	}
}

func TestValidateHashSettings(t *testing.T) {
	cfg := validDevConfig()
	cfg.PasswordHashWorkFactor = 8
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "bcrypt") {
		t.Fatalf("expected bcrypt cost error, got %v", err)
	}

	cfg = validDevConfig()
	cfg.PasswordHashDriver = "argon2id"
	cfg.PasswordHashWorkFactor = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected argon2id t=3 valid, got %v", err)
	}

	cfg = validDevConfig()
	cfg.PasswordHashDriver = "md5"
	cfg.PinBytes = 2
	cfg.HashMaxConcurrency = 0
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected errors")
	}
	for _, want := range []string{"PASSWORD_HASH_DRIVER", "PIN_BYTES", "HASH_MAX_CONCURRENCY"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestLoadReadsPinTTLsFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "sqlite://file::memory:")
	t.Setenv("AUTH_EMAIL_PIN_TTL", "30m")
	t.Setenv("AUTH_PASSWORD_RESET_PIN_TTL", "5m")
	t.Setenv("OTEL_METRICS_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthEmailPinTTL != 30*time.Minute || cfg.AuthPasswordResetPinTTL != 5*time.Minute {
		t.Fatalf("unexpected ttls: email=%v reset=%v", cfg.AuthEmailPinTTL, cfg.AuthPasswordResetPinTTL)
	}
	if cfg.NotifierDriver != "log" {
		t.Fatalf("expected log notifier default in test env, got %q", cfg.NotifierDriver)
	}
	if cfg.PasswordHashDriver != "bcrypt" || cfg.PasswordHashWorkFactor != 12 {
		t.Fatalf("unexpected hash defaults: %s/%d", cfg.PasswordHashDriver, cfg.PasswordHashWorkFactor)
	}
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://file::memory:")
	t.Setenv("AUTH_PASSWORD_RESET_PIN_TTL", "ten minutes")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "AUTH_PASSWORD_RESET_PIN_TTL") {
		t.Fatalf("expected parse error naming the key, got %v", err)
	}
}
