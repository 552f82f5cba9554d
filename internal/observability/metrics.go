package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reviewhub/credential-service/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "credential-service"

type AppMetrics struct {
	credentialReqDuration    metric.Float64Histogram
	credentialFlowCounter    metric.Int64Counter
	pinLifecycleCounter      metric.Int64Counter
	pinDispatchCounter       metric.Int64Counter
	pinDispatchDuration      metric.Float64Histogram
	secretHashDuration       metric.Float64Histogram
	identityLockCounter      metric.Int64Counter
	persistenceConflicts     metric.Int64Counter
	httpMiddlewareValidation metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
	databaseStartupCounter   metric.Int64Counter
	databaseStartupDuration  metric.Float64Histogram
	repositoryOpsCounter     metric.Int64Counter
	pinPurgeDeleted          metric.Float64Histogram
	toolCommandRuns          metric.Int64Counter
	toolCommandDuration      metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "credential.request.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
		// bcrypt cost 12 and argon2id t=3 land between 100ms and 1s.
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "security.secret_hash.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.001, 0.01, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1, 2},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var (
		m   AppMetrics
		err error
	)
	counter := func(dst *metric.Int64Counter, name, desc string) {
		if err != nil {
			return
		}
		*dst, err = meter.Int64Counter(name, metric.WithDescription(desc))
	}
	hist := func(dst *metric.Float64Histogram, name, unit, desc string) {
		if err != nil {
			return
		}
		*dst, err = meter.Float64Histogram(name, metric.WithUnit(unit), metric.WithDescription(desc))
	}

	hist(&m.credentialReqDuration, "credential.request.duration", "s", "Duration of credential endpoint requests in seconds")
	counter(&m.credentialFlowCounter, "credential.flow.events", "Credential lifecycle flow outcomes")
	counter(&m.pinLifecycleCounter, "credential.pin.events", "Pin slot transitions by purpose")
	counter(&m.pinDispatchCounter, "credential.pin.dispatch.events", "Pin notification dispatch outcomes")
	hist(&m.pinDispatchDuration, "credential.pin.dispatch.duration", "s", "Pin notification dispatch latency in seconds")
	hist(&m.secretHashDuration, "security.secret_hash.duration", "s", "Secret hash and verify latency in seconds")
	counter(&m.identityLockCounter, "credential.identity_lock.events", "Per-identity lock acquisition outcomes")
	counter(&m.persistenceConflicts, "credential.persistence.conflicts", "Retryable persistence conflicts observed")
	counter(&m.httpMiddlewareValidation, "http.middleware.validation.events", "Request validation outcomes in HTTP middleware")
	counter(&m.healthCheckResultCounter, "health.check.results", "Health dependency check outcomes")
	hist(&m.healthCheckDuration, "health.check.duration", "s", "Duration of health dependency checks in seconds")
	counter(&m.databaseStartupCounter, "database.startup.events", "Database startup phase outcomes")
	hist(&m.databaseStartupDuration, "database.startup.duration", "s", "Database startup phase duration in seconds")
	counter(&m.repositoryOpsCounter, "repository.operations", "Repository operation outcomes")
	hist(&m.pinPurgeDeleted, "credential.pin.purge.deleted_rows", "1", "Expired pin slots removed per purge run")
	counter(&m.toolCommandRuns, "tool.command.runs", "CLI tool command runs")
	hist(&m.toolCommandDuration, "tool.command.duration", "s", "CLI tool command duration in seconds")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func loadMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordCredentialRequestDuration(ctx context.Context, endpoint, status string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.credentialReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

// RecordCredentialFlowEvent counts terminal outcomes of register, verify,
// resend, forgot, reset and change flows.
func RecordCredentialFlowEvent(ctx context.Context, flow, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.credentialFlowCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
}

func RecordPinLifecycleEvent(ctx context.Context, purpose, event string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.pinLifecycleCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("event", event),
	))
}

func RecordPinDispatch(ctx context.Context, purpose, driver, outcome string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("driver", driver),
		attribute.String("outcome", outcome),
	)
	m.pinDispatchCounter.Add(ctx, 1, attrs)
	m.pinDispatchDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordSecretHashDuration(ctx context.Context, op, label, outcome string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.secretHashDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("label", label),
		attribute.String("outcome", outcome),
	))
}

func RecordIdentityLockEvent(ctx context.Context, backend, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.identityLockCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
}

func RecordPersistenceConflict(ctx context.Context, operation, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.persistenceConflicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.httpMiddlewareValidation.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}

func RecordRepositoryOperation(ctx context.Context, repository, operation, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("repository", repository),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordPinPurgeDeletedRows(ctx context.Context, purpose string, rows int64) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.pinPurgeDeleted.Record(ctx, float64(rows), metric.WithAttributes(
		attribute.String("purpose", purpose),
	))
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandDuration(ctx context.Context, tool, command, outcome string, duration time.Duration) {
	m := loadMetrics()
	if m == nil {
		return
	}
	m.toolCommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}
