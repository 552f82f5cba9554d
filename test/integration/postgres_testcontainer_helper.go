package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/security"
	"github.com/reviewhub/credential-service/internal/service"
)

const defaultPostgresTestImage = "docker.io/library/postgres:16-alpine"

type postgresIntegrationEnv struct {
	dsn string
	db  *gorm.DB
	cfg *config.Config

	container testcontainers.Container
}

func newPostgresIntegrationEnv(t *testing.T) *postgresIntegrationEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	image := os.Getenv("POSTGRES_TEST_IMAGE")
	if strings.TrimSpace(image) == "" {
		image = defaultPostgresTestImage
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: image,
			Env: map[string]string{
				"POSTGRES_USER":     "credentials",
				"POSTGRES_PASSWORD": "credentials",
				"POSTGRES_DB":       "credentials",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres test container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve postgres host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("resolve postgres port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://credentials:credentials@%s/credentials?sslmode=disable", net.JoinHostPort(host, mappedPort.Port()))

	cfg := &config.Config{
		Env:                     "test",
		DatabaseURL:             dsn,
		AuthEmailPinTTL:         15 * time.Minute,
		AuthPasswordResetPinTTL: 10 * time.Minute,
		AuthEmailVerifyBaseURL:  "https://reviews.example.com/verify",
		NotifierDriver:          "log",
		NotifierTimeout:         time.Second,
		CredentialLockWait:      5 * time.Second,
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if _, err := database.MigrateVersioned(ctx, db); err != nil {
		t.Fatalf("migrate postgres: %v", err)
	}
	return &postgresIntegrationEnv{dsn: dsn, db: db, cfg: cfg, container: container}
}

type captureDispatcher struct {
	mu   sync.Mutex
	sent []service.PinNotification
}

func (c *captureDispatcher) SendVerificationPin(_ context.Context, n service.PinNotification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureDispatcher) SendPasswordResetPin(ctx context.Context, n service.PinNotification) error {
	return c.SendVerificationPin(ctx, n)
}

func (c *captureDispatcher) pins() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.sent))
	for _, n := range c.sent {
		out = append(out, n.Pin)
	}
	return out
}

func (c *captureDispatcher) lastPin(t *testing.T) string {
	t.Helper()
	pins := c.pins()
	if len(pins) == 0 {
		t.Fatal("expected a dispatched pin")
	}
	return pins[len(pins)-1]
}

// newCredentialService builds one service replica over the shared database.
// Replicas built separately do not share an identity lock.
func (e *postgresIntegrationEnv) newCredentialService(dispatcher service.PinDispatcher) *service.CredentialService {
	expiry, err := service.NewExpiryPolicyFromConfig(e.cfg)
	if err != nil {
		panic(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewCredentialService(
		e.cfg,
		repository.NewTransactor(e.db),
		repository.NewRepositories(e.db),
		security.NewBcryptHasher(4),
		security.NewHexPinGenerator(security.DefaultPinBytes),
		expiry,
		dispatcher,
		service.NewMemoryIdentityLocker(e.cfg.CredentialLockWait),
		logger,
	)
}
