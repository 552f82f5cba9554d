package di

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/security"
	"github.com/reviewhub/credential-service/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvideHTTPServer(t *testing.T) {
	cfg := &config.Config{HTTPPort: "9999"}
	srv := provideHTTPServer(cfg, nil)
	if srv.Addr != ":9999" {
		t.Fatalf("unexpected addr: %s", srv.Addr)
	}
	if srv.ReadTimeout.Seconds() != 10 {
		t.Fatalf("unexpected read timeout: %v", srv.ReadTimeout)
	}
}

func TestProvideRouterDependencies(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"http://localhost:3000"}, OTELMetricsEnabled: true}
	dep := provideRouterDependencies(nil, nil, nil, nil, cfg)
	if !dep.EnableOTelHTTP {
		t.Fatal("expected otel http enabled")
	}
	if len(dep.CORSOrigins) != 1 || dep.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %+v", dep.CORSOrigins)
	}
}

func TestComposeRedisPrefix(t *testing.T) {
	tests := map[string]string{
		"credsvc":   "credsvc:credential_lock",
		"credsvc:":  "credsvc:credential_lock",
		" ":         "credential_lock",
		"":          "credential_lock",
		"a:b":       "a:b:credential_lock",
	}
	for base, want := range tests {
		if got := composeRedisPrefix(base, "credential_lock"); got != want {
			t.Fatalf("composeRedisPrefix(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestProvideSecretHasherIsBounded(t *testing.T) {
	cfg := &config.Config{PasswordHashDriver: "bcrypt", PasswordHashWorkFactor: 10, HashMaxConcurrency: 2}
	h, err := provideSecretHasher(cfg)
	if err != nil {
		t.Fatalf("provide hasher: %v", err)
	}
	if _, ok := h.(*security.BoundedHasher); !ok {
		t.Fatalf("expected bounded hasher, got %T", h)
	}
	encoded, err := h.Hash("Valid#Pass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := h.Verify("Valid#Pass123", encoded)
	if err != nil || !ok {
		t.Fatalf("expected verify ok, got ok=%v err=%v", ok, err)
	}

	cfg.PasswordHashDriver = "md5"
	if _, err := provideSecretHasher(cfg); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestProvidePinDispatcherByDriver(t *testing.T) {
	cfg := &config.Config{NotifierDriver: "log", NotifierTimeout: time.Second}
	if _, ok := providePinDispatcher(cfg, discardLogger()).(*service.LogPinDispatcher); !ok {
		t.Fatal("expected log dispatcher")
	}
	cfg = &config.Config{NotifierDriver: "resend", ResendAPIKey: "re_test", MailFrom: "noreply@example.com", ResendBaseURL: "https://api.resend.com", NotifierTimeout: time.Second}
	if _, ok := providePinDispatcher(cfg, discardLogger()).(*service.ResendPinDispatcher); !ok {
		t.Fatal("expected resend dispatcher")
	}
}

func TestProvideIdentityLockerAndReadiness(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		CredentialLockRedisEnabled: true,
		CredentialLockTTL:          10 * time.Second,
		CredentialLockWait:         time.Second,
		RedisAddr:                  mr.Addr(),
		RedisKeyPrefix:             "credsvc",
		RedisPoolSize:              2,
		ReadinessProbeTimeout:      time.Second,
		DatabaseURL:                "sqlite://" + filepath.Join(t.TempDir(), "di.db"),
	}
	client := provideRedisClient(cfg, discardLogger())
	if client == nil {
		t.Fatal("expected redis client")
	}
	t.Cleanup(func() { _ = client.Close() })

	locker := provideIdentityLocker(cfg, client, discardLogger())
	if _, ok := locker.(*service.RedisIdentityLocker); !ok {
		t.Fatalf("expected redis locker, got %T", locker)
	}
	unlock, err := locker.Lock(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists("credsvc:credential_lock:identity:u-1") {
		t.Fatalf("expected prefixed lock key, have %v", mr.Keys())
	}
	unlock()

	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	readiness := provideReadinessProbeRunner(cfg, db, client)
	ready, results := readiness.Ready(context.Background())
	if ready {
		t.Fatalf("expected unready before migrations, got %+v", results)
	}
	if _, err := database.MigrateVersioned(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ready, results = readiness.Ready(context.Background())
	if !ready || len(results) != 3 {
		t.Fatalf("expected db, schema and redis checks to pass, got ready=%v %+v", ready, results)
	}

	cfg.CredentialLockRedisEnabled = false
	if provideRedisClient(cfg, discardLogger()) != nil {
		t.Fatal("expected no redis client when distributed locks are disabled")
	}
	if _, ok := provideIdentityLocker(cfg, nil, discardLogger()).(*service.MemoryIdentityLocker); !ok {
		t.Fatal("expected memory locker fallback")
	}
}

func TestRuntimeDBMigratesOnStart(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:            "sqlite://" + filepath.Join(t.TempDir(), "start.db"),
		DatabaseMigrateOnStart: true,
	}
	db, err := provideRuntimeDB(cfg, discardLogger())
	if err != nil {
		t.Fatalf("runtime db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	pending, err := database.PendingMigrations(context.Background(), db)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending migrations, got %+v", pending)
	}

	h := provideHTTPServer(&config.Config{HTTPPort: "0"}, http.NotFoundHandler())
	rr := httptest.NewRecorder()
	h.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected handler passthrough, got %d", rr.Code)
	}
}

func TestInitializeAppBuildsSQLiteGraph(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })
	for key, value := range map[string]string{
		"APP_ENV":                       "test",
		"DATABASE_URL":                  "sqlite://" + filepath.Join(t.TempDir(), "app.db"),
		"DB_MIGRATE_ON_START":           "true",
		"PASSWORD_HASH_WORK_FACTOR":     "10",
		"SERVER_START_GRACE_PERIOD":     "0s",
		"CREDENTIAL_LOCK_REDIS_ENABLED": "false",
		"OTEL_METRICS_ENABLED":          "false",
		"OTEL_TRACING_ENABLED":          "false",
		"OTEL_LOGS_ENABLED":             "false",
	} {
		t.Setenv(key, value)
	}

	a, err := InitializeApp()
	if err != nil {
		t.Fatalf("initialize app: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if a.Redis != nil {
		t.Fatal("expected no redis client when distributed locks are disabled")
	}
	if ready, results := a.Readiness.Ready(t.Context()); !ready {
		t.Fatalf("expected migrated app to be ready, got %+v", results)
	}

	body := `{"email":"wired@example.com","user_name":"wired_user","first_name":"Wi","last_name":"Red","password":"Valid#Pass1234"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected register through wired router, got %d: %s", rr.Code, rr.Body.String())
	}
}
