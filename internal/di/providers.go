package di

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/reviewhub/credential-service/internal/app"
	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/database"
	"github.com/reviewhub/credential-service/internal/health"
	"github.com/reviewhub/credential-service/internal/http/handler"
	"github.com/reviewhub/credential-service/internal/http/router"
	"github.com/reviewhub/credential-service/internal/observability"
	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/security"
	"github.com/reviewhub/credential-service/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewRepositories,
	repository.NewTransactor,
)

var SecuritySet = wire.NewSet(
	provideSecretHasher,
	providePinGenerator,
)

var ServiceSet = wire.NewSet(
	service.NewExpiryPolicyFromConfig,
	providePinDispatcher,
	provideIdentityLocker,
	service.NewCredentialService,
	service.NewAccountService,
	wire.Bind(new(service.CredentialServiceInterface), new(*service.CredentialService)),
	wire.Bind(new(service.AccountServiceInterface), new(*service.AccountService)),
)

var HTTPSet = wire.NewSet(
	handler.NewCredentialHandler,
	handler.NewUserHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideRuntimeDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.DatabaseMigrateOnStart {
		return db, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	applied, err := database.MigrateVersioned(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(applied) > 0 {
		logger.Info("schema migrations applied", "versions", applied)
	}
	return db, nil
}

// provideRedisClient returns nil unless distributed identity locks are
// enabled; everything downstream treats a nil client as "single replica".
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.CredentialLockRedisEnabled {
		return nil
	}
	opts := &redis.Options{
		Addr:            cfg.RedisAddr,
		Username:        cfg.RedisUsername,
		Password:        cfg.RedisPassword,
		DB:              cfg.RedisDB,
		DialTimeout:     cfg.RedisDialTimeout,
		ReadTimeout:     cfg.RedisReadTimeout,
		WriteTimeout:    cfg.RedisWriteTimeout,
		MaxRetries:      cfg.RedisMaxRetries,
		MinRetryBackoff: cfg.RedisMinRetryBackoff,
		MaxRetryBackoff: cfg.RedisMaxRetryBackoff,
		PoolSize:        cfg.RedisPoolSize,
		MinIdleConns:    cfg.RedisMinIdleConns,
		PoolTimeout:     cfg.RedisPoolTimeout,
	}
	if cfg.RedisTLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.RedisTLSServerName}
	}
	client := redis.NewClient(opts)
	observability.InstrumentRedisClient(client, logger)
	return client
}

func composeRedisPrefix(base, scope string) string {
	base = strings.Trim(strings.TrimSpace(base), ":")
	if base == "" {
		return scope
	}
	return base + ":" + scope
}

func provideSecretHasher(cfg *config.Config) (security.SecretHasher, error) {
	inner, err := security.NewSecretHasher(cfg.PasswordHashDriver, cfg.PasswordHashWorkFactor)
	if err != nil {
		return nil, err
	}
	return security.NewBoundedHasher(inner, cfg.HashMaxConcurrency, cfg.PasswordHashDriver), nil
}

func providePinGenerator(cfg *config.Config) security.PinGenerator {
	return security.NewHexPinGenerator(cfg.PinBytes)
}

func providePinDispatcher(cfg *config.Config, logger *slog.Logger) service.PinDispatcher {
	if cfg.NotifierDriver == "resend" {
		return service.NewResendPinDispatcher(cfg.ResendAPIKey, cfg.MailFrom, cfg.ResendBaseURL, cfg.NotifierTimeout)
	}
	logger.Warn("pin dispatcher logs pins instead of sending mail", "driver", cfg.NotifierDriver)
	return service.NewLogPinDispatcher(logger)
}

func provideIdentityLocker(cfg *config.Config, redisClient redis.UniversalClient, logger *slog.Logger) service.IdentityLocker {
	if cfg.CredentialLockRedisEnabled && redisClient != nil {
		return service.NewRedisIdentityLocker(
			redisClient,
			composeRedisPrefix(cfg.RedisKeyPrefix, "credential_lock"),
			cfg.CredentialLockTTL,
			cfg.CredentialLockWait,
			logger,
		)
	}
	return service.NewMemoryIdentityLocker(cfg.CredentialLockWait)
}

func provideRouterDependencies(
	credentialHandler *handler.CredentialHandler,
	userHandler *handler.UserHandler,
	readiness *health.ProbeRunner,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		CredentialHandler: credentialHandler,
		UserHandler:       userHandler,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		Readiness:         readiness,
		Logger:            logger,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := []health.Checker{health.NewDBChecker(db), health.NewSchemaChecker(db)}
	if cfg.CredentialLockRedisEnabled {
		checkers = append(checkers, health.NewRedisChecker(redisClient))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
