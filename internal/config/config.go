package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const maxPinTTL = 24 * time.Hour

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL            string
	DatabaseMigrateOnStart bool
	CORSAllowedOrigins     []string

	PasswordHashDriver     string
	PasswordHashWorkFactor int
	HashMaxConcurrency     int
	PinBytes               int

	AuthEmailPinTTL          time.Duration
	AuthPasswordResetPinTTL  time.Duration
	AuthEmailVerifyBaseURL   string
	AuthPasswordResetBaseURL string

	NotifierDriver  string
	NotifierTimeout time.Duration
	ResendAPIKey    string
	ResendBaseURL   string
	MailFrom        string

	CredentialLockRedisEnabled bool
	CredentialLockTTL          time.Duration
	CredentialLockWait         time.Duration

	RedisAddr            string
	RedisUsername        string
	RedisPassword        string
	RedisDB              int
	RedisKeyPrefix       string
	RedisTLSEnabled      bool
	RedisTLSServerName   string
	RedisDialTimeout     time.Duration
	RedisReadTimeout     time.Duration
	RedisWriteTimeout    time.Duration
	RedisMaxRetries      int
	RedisMinRetryBackoff time.Duration
	RedisMaxRetryBackoff time.Duration
	RedisPoolSize        int
	RedisMinIdleConns    int
	RedisPoolTimeout     time.Duration

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	notifierDefault := "resend"
	if isLocalLikeEnv(env) {
		notifierDefault = "log"
	}

	cfg := &Config{
		Env:                    env,
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DatabaseMigrateOnStart: getEnvBool("DB_MIGRATE_ON_START", true),
		CORSAllowedOrigins:     splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		PasswordHashDriver:     strings.ToLower(getEnv("PASSWORD_HASH_DRIVER", "bcrypt")),
		PasswordHashWorkFactor: getEnvInt("PASSWORD_HASH_WORK_FACTOR", 12),
		HashMaxConcurrency:     getEnvInt("HASH_MAX_CONCURRENCY", runtime.NumCPU()),
		PinBytes:               getEnvInt("PIN_BYTES", 4),

		AuthEmailVerifyBaseURL:   strings.TrimSpace(os.Getenv("AUTH_EMAIL_VERIFY_BASE_URL")),
		AuthPasswordResetBaseURL: strings.TrimSpace(os.Getenv("AUTH_PASSWORD_RESET_BASE_URL")),

		NotifierDriver: strings.ToLower(getEnv("NOTIFIER_DRIVER", notifierDefault)),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:  getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		MailFrom:       strings.TrimSpace(os.Getenv("MAIL_FROM")),

		CredentialLockRedisEnabled: getEnvBool("CREDENTIAL_LOCK_REDIS_ENABLED", false),

		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisUsername:      os.Getenv("REDIS_USERNAME"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:     getEnv("REDIS_KEY_PREFIX", "credsvc"),
		RedisTLSEnabled:    getEnvBool("REDIS_TLS_ENABLED", false),
		RedisTLSServerName: os.Getenv("REDIS_TLS_SERVER_NAME"),
		RedisMaxRetries:    getEnvInt("REDIS_MAX_RETRIES", 3),
		RedisPoolSize:      getEnvInt("REDIS_POOL_SIZE", 10),
		RedisMinIdleConns:  getEnvInt("REDIS_MIN_IDLE_CONNS", 2),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "credential-service"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"AUTH_EMAIL_PIN_TTL", "15m", &cfg.AuthEmailPinTTL},
		{"AUTH_PASSWORD_RESET_PIN_TTL", "10m", &cfg.AuthPasswordResetPinTTL},
		{"NOTIFIER_TIMEOUT", "5s", &cfg.NotifierTimeout},
		{"CREDENTIAL_LOCK_TTL", "10s", &cfg.CredentialLockTTL},
		{"CREDENTIAL_LOCK_WAIT", "3s", &cfg.CredentialLockWait},
		{"REDIS_DIAL_TIMEOUT", "5s", &cfg.RedisDialTimeout},
		{"REDIS_READ_TIMEOUT", "3s", &cfg.RedisReadTimeout},
		{"REDIS_WRITE_TIMEOUT", "3s", &cfg.RedisWriteTimeout},
		{"REDIS_MIN_RETRY_BACKOFF", "8ms", &cfg.RedisMinRetryBackoff},
		{"REDIS_MAX_RETRY_BACKOFF", "512ms", &cfg.RedisMaxRetryBackoff},
		{"REDIS_POOL_TIMEOUT", "4s", &cfg.RedisPoolTimeout},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "2s", &cfg.ServerStartGracePeriod},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	prod := c.IsProduction()
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if prod && strings.HasPrefix(c.DatabaseURL, "sqlite://") {
		errs = append(errs, "sqlite DATABASE_URL is only allowed in local environments")
	}

	switch c.PasswordHashDriver {
	case "bcrypt":
		if c.PasswordHashWorkFactor < 10 || c.PasswordHashWorkFactor > 31 {
			errs = append(errs, "PASSWORD_HASH_WORK_FACTOR must be between 10 and 31 for bcrypt")
		}
	case "argon2id":
		if c.PasswordHashWorkFactor < 1 || c.PasswordHashWorkFactor > 10 {
			errs = append(errs, "PASSWORD_HASH_WORK_FACTOR must be between 1 and 10 for argon2id")
		}
	default:
		errs = append(errs, "PASSWORD_HASH_DRIVER must be one of bcrypt, argon2id")
	}
	if c.HashMaxConcurrency <= 0 {
		errs = append(errs, "HASH_MAX_CONCURRENCY must be > 0")
	}
	if c.PinBytes < 4 || c.PinBytes > 16 {
		errs = append(errs, "PIN_BYTES must be between 4 and 16")
	}
	if c.AuthEmailPinTTL <= 0 || c.AuthEmailPinTTL > maxPinTTL {
		errs = append(errs, "AUTH_EMAIL_PIN_TTL must be between 1s and 24h")
	}
	if c.AuthPasswordResetPinTTL <= 0 || c.AuthPasswordResetPinTTL > maxPinTTL {
		errs = append(errs, "AUTH_PASSWORD_RESET_PIN_TTL must be between 1s and 24h")
	}
	for key, raw := range map[string]string{
		"AUTH_EMAIL_VERIFY_BASE_URL":   c.AuthEmailVerifyBaseURL,
		"AUTH_PASSWORD_RESET_BASE_URL": c.AuthPasswordResetBaseURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, key+" must be an absolute URL")
			continue
		}
		if prod && u.Scheme != "https" {
			errs = append(errs, key+" must use https outside local environments")
		}
	}

	switch c.NotifierDriver {
	case "log":
		if prod {
			errs = append(errs, "NOTIFIER_DRIVER=log is not allowed outside local environments")
		}
	case "resend":
		if c.ResendAPIKey == "" {
			errs = append(errs, "RESEND_API_KEY is required when NOTIFIER_DRIVER=resend")
		}
		if c.MailFrom == "" {
			errs = append(errs, "MAIL_FROM is required when NOTIFIER_DRIVER=resend")
		}
		if c.ResendBaseURL == "" {
			errs = append(errs, "RESEND_BASE_URL is required when NOTIFIER_DRIVER=resend")
		}
	default:
		errs = append(errs, "NOTIFIER_DRIVER must be one of log, resend")
	}
	if c.NotifierTimeout <= 0 {
		errs = append(errs, "NOTIFIER_TIMEOUT must be > 0")
	}

	if c.CredentialLockTTL <= 0 {
		errs = append(errs, "CREDENTIAL_LOCK_TTL must be > 0")
	}
	if c.CredentialLockWait <= 0 {
		errs = append(errs, "CREDENTIAL_LOCK_WAIT must be > 0")
	}
	if c.CredentialLockTTL > 0 && c.NotifierTimeout > 0 && c.CredentialLockTTL <= c.NotifierTimeout {
		errs = append(errs, "CREDENTIAL_LOCK_TTL must exceed NOTIFIER_TIMEOUT")
	}
	if c.CredentialLockRedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when CREDENTIAL_LOCK_REDIS_ENABLED=true")
	}
	if c.CredentialLockRedisEnabled && c.RedisPoolSize <= 0 {
		errs = append(errs, "REDIS_POOL_SIZE must be > 0")
	}
	if c.RedisMinRetryBackoff > c.RedisMaxRetryBackoff {
		errs = append(errs, "REDIS_MIN_RETRY_BACKOFF must not exceed REDIS_MAX_RETRY_BACKOFF")
	}

	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be > 0")
	}
	if c.ShutdownHTTPDrainTimeout <= 0 || c.ShutdownHTTPDrainTimeout > c.ShutdownTimeout {
		errs = append(errs, "SHUTDOWN_HTTP_DRAIN_TIMEOUT must be > 0 and <= SHUTDOWN_TIMEOUT")
	}
	if c.ShutdownObservabilityTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_OBSERVABILITY_TIMEOUT must be > 0")
	}

	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return !isLocalLikeEnv(c.Env)
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
