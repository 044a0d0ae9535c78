package di

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/konstantinWDK/github-light-calendar/application/ports"
	querybus "github.com/konstantinWDK/github-light-calendar/application/queries/bus"
	"github.com/konstantinWDK/github-light-calendar/application/services"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/config"
	"github.com/konstantinWDK/github-light-calendar/interfaces/http/rest"
	"github.com/konstantinWDK/github-light-calendar/pkg/observability"
	"github.com/konstantinWDK/github-light-calendar/pkg/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	LogLevel    zap.AtomicLevel
	Metrics     *observability.Collector
	Tracer      *observability.Tracer
	Source      ports.ActivitySource
	Cache       ports.ResponseCache
	Aggregator  *services.Aggregator
	QueryBus    *querybus.QueryBus
	RateLimiter *ratelimit.IPRateLimiter
	Router      *rest.Router
}

// ApplyConfig applies the settings of a reloaded configuration that can
// change while running: the log level and a non-zero rate limit. Other
// changed settings are logged as needing a restart.
func (c *Container) ApplyConfig(prev, next *config.Config) {
	if level, err := zapcore.ParseLevel(next.LogLevel); err == nil && level != c.LogLevel.Level() {
		c.LogLevel.SetLevel(level)
		c.Logger.Info("Log level changed", zap.Stringer("level", level))
	}

	if c.RateLimiter != nil && next.RateLimitPerMinute > 0 && next.RateLimitPerMinute != c.RateLimiter.Limit() {
		c.RateLimiter.SetLimit(next.RateLimitPerMinute)
		c.Logger.Info("Rate limit changed", zap.Int("requests_per_minute", next.RateLimitPerMinute))
	}

	if keys := config.RestartRequired(prev, next); len(keys) > 0 {
		c.Logger.Warn("Configuration changes need a restart to take effect", zap.Strings("settings", keys))
	}
}
