//go:build !wireinject
// +build !wireinject

// Injector for the graph declared in wire.go, kept by hand in the layout wire
// emits. Running go generate in this package replaces it with wire's output.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

package di

import (
	"github.com/reviewhub/credential-service/internal/app"
	"github.com/reviewhub/credential-service/internal/config"
	"github.com/reviewhub/credential-service/internal/http/handler"
	"github.com/reviewhub/credential-service/internal/http/router"
	"github.com/reviewhub/credential-service/internal/repository"
	"github.com/reviewhub/credential-service/internal/service"
)

func InitializeApp() (*app.App, error) {
	configConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	runtime, err := provideObservabilityRuntime(configConfig)
	if err != nil {
		return nil, err
	}
	logger := provideAppLogger(configConfig, runtime)
	db, err := provideRuntimeDB(configConfig, logger)
	if err != nil {
		return nil, err
	}
	transactor := repository.NewTransactor(db)
	repositories := repository.NewRepositories(db)
	secretHasher, err := provideSecretHasher(configConfig)
	if err != nil {
		return nil, err
	}
	pinGenerator := providePinGenerator(configConfig)
	expiryPolicy, err := service.NewExpiryPolicyFromConfig(configConfig)
	if err != nil {
		return nil, err
	}
	pinDispatcher := providePinDispatcher(configConfig, logger)
	universalClient := provideRedisClient(configConfig, logger)
	identityLocker := provideIdentityLocker(configConfig, universalClient, logger)
	credentialService := service.NewCredentialService(configConfig, transactor, repositories, secretHasher, pinGenerator, expiryPolicy, pinDispatcher, identityLocker, logger)
	accountService := service.NewAccountService(repositories, credentialService, secretHasher)
	credentialHandler := handler.NewCredentialHandler(accountService, logger)
	userHandler := handler.NewUserHandler(accountService)
	probeRunner := provideReadinessProbeRunner(configConfig, db, universalClient)
	dependencies := provideRouterDependencies(credentialHandler, userHandler, probeRunner, logger, configConfig)
	httpHandler := router.NewRouter(dependencies)
	server := provideHTTPServer(configConfig, httpHandler)
	appApp := provideApp(configConfig, logger, server, runtime, db, universalClient, probeRunner)
	return appApp, nil
}
