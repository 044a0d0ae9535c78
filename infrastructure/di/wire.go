//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/konstantinWDK/github-light-calendar/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideDynamoDBClientFactory,
	ProvideMetrics,
	ProvideTracer,
	ProvideGitHubClient,
	ProvideActivitySource,
	ProvideAggregator,
	ProvideResponseCache,
	ProvideGetCalendarHandler,
	ProvideQueryBus,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// flushes the tracer.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
