package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/konstantinWDK/github-light-calendar/application/ports"
	"github.com/konstantinWDK/github-light-calendar/application/queries"
	querybus "github.com/konstantinWDK/github-light-calendar/application/queries/bus"
	queryhandlers "github.com/konstantinWDK/github-light-calendar/application/queries/handlers"
	"github.com/konstantinWDK/github-light-calendar/application/services"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/config"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/githubapi"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/persistence/dynamodb"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/persistence/filecache"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/persistence/memory"
	"github.com/konstantinWDK/github-light-calendar/interfaces/http/rest"
	"github.com/konstantinWDK/github-light-calendar/interfaces/http/rest/middleware"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
	"github.com/konstantinWDK/github-light-calendar/pkg/observability"
	"github.com/konstantinWDK/github-light-calendar/pkg/ratelimit"
)

const metricsNamespace = "ghcal"

// ProvideLogLevel parses LOG_LEVEL into a level that can be changed at runtime
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level: %w", err)
	}
	return zap.NewAtomicLevelAt(level), nil
}

// ProvideLogger creates the application logger
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

// ProvideAWSConfig loads the AWS SDK configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// DynamoDBClientFactory builds a DynamoDB client on demand.
type DynamoDBClientFactory func(ctx context.Context) (dynamodb.API, error)

// ProvideDynamoDBClientFactory defers loading the AWS configuration until a
// backend asks for a client, so non-DynamoDB backends never read it.
func ProvideDynamoDBClientFactory(cfg *config.Config) DynamoDBClientFactory {
	return func(ctx context.Context) (dynamodb.API, error) {
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return ProvideDynamoDBClient(awsCfg), nil
	}
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are disabled
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(metricsNamespace)
}

// ProvideTracer installs the OpenTelemetry tracer provider
func ProvideTracer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Tracer, func(), error) {
	tracer, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.EnableTracing,
		ServiceName: "github-light-calendar",
		Environment: cfg.Environment,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to shut down tracer", zap.Error(err))
		}
	}
	return tracer, cleanup, nil
}

// ProvideGitHubClient creates the GitHub API client
func ProvideGitHubClient(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (*githubapi.Client, error) {
	client, err := githubapi.NewClient(githubapi.Options{
		BaseURL: cfg.GitHubAPIURL,
		Token:   cfg.GitHubToken,
		Timeout: cfg.Timeout(),
		Retry: githubapi.RetryPolicy{
			Enabled:    cfg.EnableRetries,
			MaxRetries: cfg.MaxRetries,
		},
		Metrics: metrics,
	}, logger)
	if err != nil {
		return nil, err
	}

	if !client.Authenticated() {
		logger.Warn("No usable GITHUB_TOKEN, GraphQL calendar source disabled")
	}
	return client, nil
}

// ProvideActivitySource exposes the GitHub client through its port
func ProvideActivitySource(client *githubapi.Client) ports.ActivitySource {
	return client
}

// ProvideAggregator creates the contribution aggregator
func ProvideAggregator(source ports.ActivitySource, cfg *config.Config, logger *zap.Logger) (*services.Aggregator, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("invalid calendar time zone: %w", err)
	}
	return services.NewDefaultAggregator(source, logger, services.WithLocation(loc)), nil
}

// ProvideResponseCache creates the configured cache backend
func ProvideResponseCache(ctx context.Context, cfg *config.Config, newClient DynamoDBClientFactory, logger *zap.Logger) (ports.ResponseCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheBackendFile:
		cache, err := filecache.New(cfg.CacheDir, logger)
		if err != nil {
			return nil, nil, err
		}
		return cache, noop, nil
	case config.CacheBackendDynamoDB:
		client, err := newClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return dynamodb.NewCache(client, cfg.CacheTable, cfg.Freshness(), logger), noop, nil
	case config.CacheBackendMemory:
		return memory.New(), noop, nil
	case config.CacheBackendNone:
		return memory.Disabled{}, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// ProvideGetCalendarHandler creates the calendar query handler
func ProvideGetCalendarHandler(
	cache ports.ResponseCache,
	aggregator *services.Aggregator,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) *queryhandlers.GetCalendarHandler {
	return queryhandlers.NewGetCalendarHandler(cache, aggregator, cfg.Freshness(), metrics, logger)
}

// ProvideQueryBus creates the query bus and registers all handlers
func ProvideQueryBus(
	getCalendar *queryhandlers.GetCalendarHandler,
	metrics *observability.Collector,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()
	mw := querybus.NewMetricsMiddleware(metrics)

	if err := queryBus.Register(queries.GetCalendarQuery{}, mw.Wrap(getCalendar.AsQueryHandler())); err != nil {
		return nil, err
	}
	return queryBus, nil
}

// ProvideRateLimiter creates the per-IP limiter, or nil when throttling is off
func ProvideRateLimiter(cfg *config.Config) *ratelimit.IPRateLimiter {
	if cfg.RateLimitPerMinute <= 0 {
		return nil
	}
	return ratelimit.NewIPRateLimiter(cfg.RateLimitPerMinute)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	queryBus *querybus.QueryBus,
	metrics *observability.Collector,
	limiter *ratelimit.IPRateLimiter,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	var l middleware.Limiter
	if limiter != nil {
		l = limiter
	}
	return rest.NewRouter(queryBus, metrics, l, errorHandler, logger)
}
