// Package services holds the contribution acquisition pipeline.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/application/ports"
	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/domain/remote"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
	"github.com/konstantinWDK/github-light-calendar/pkg/observability"
)

var tracer = otel.Tracer("github-light-calendar/services")

// Acquisition is a freshly built contribution map and where it came from.
type Acquisition struct {
	Login         string
	Contributions calendar.ContributionMap
	Source        calendar.Source
}

// Result lays the acquisition out as the wire calendar.
func (a *Acquisition) Result() calendar.Result {
	return calendar.NewResult(a.Login, a.Contributions)
}

// Aggregator resolves a user and acquires their contributions over the
// trailing window, falling back through its strategies in order.
type Aggregator struct {
	source     ports.ActivitySource
	strategies []Strategy
	mock       Strategy
	location   *time.Location
	now        func() time.Time
	logger     *zap.Logger
}

// AggregatorOption customizes an Aggregator.
type AggregatorOption func(*Aggregator)

// WithClock overrides the time source used to place the window.
func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the time zone calendar dates are expressed in.
func WithLocation(loc *time.Location) AggregatorOption {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

// NewAggregator creates an aggregator trying strategies in order and using
// mock when GitHub is rate limiting.
func NewAggregator(
	source ports.ActivitySource,
	strategies []Strategy,
	mock Strategy,
	logger *zap.Logger,
	opts ...AggregatorOption,
) *Aggregator {
	a := &Aggregator{
		source:     source,
		strategies: strategies,
		mock:       mock,
		location:   time.UTC,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewDefaultAggregator wires the GraphQL, REST and mock strategies.
func NewDefaultAggregator(source ports.ActivitySource, logger *zap.Logger, opts ...AggregatorOption) *Aggregator {
	return NewAggregator(
		source,
		[]Strategy{
			NewGraphQLStrategy(source, logger),
			NewRESTStrategy(source, DefaultRepositoryLimit, logger),
		},
		NewMockStrategy(nil),
		logger,
		opts...,
	)
}

// Window returns the window a call to Aggregate made now would cover.
func (a *Aggregator) Window() calendar.Window {
	return calendar.NewWindow(a.now(), a.location)
}

// Aggregate builds the contribution map for username.
//
// A user that does not exist yields a NOT_FOUND error. A rate-limited
// identity check, or a strategy chain whose last failure is a rate limit,
// yields mock data. Any other failure is an internal error.
func (a *Aggregator) Aggregate(ctx context.Context, username string) (*Acquisition, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.Aggregate")
	defer span.End()

	w := a.Window()

	login, outcome := a.source.LookupUser(ctx, username)
	switch outcome.Kind {
	case remote.OK:
	case remote.NotFound:
		return nil, apperrors.NewUserNotFoundError(username)
	case remote.RateLimited:
		a.logger.Warn("Identity check rate limited, serving mock data",
			zap.String("username", username),
		)
		return a.useMock(ctx, username, w, span)
	default:
		err := apperrors.NewIdentityCheckError(errors.New(outcome.String()))
		observability.RecordError(span, err)
		return nil, err
	}

	var last remote.Outcome
	for _, strategy := range a.strategies {
		contributions, outcome := a.try(ctx, strategy, login, w)
		if outcome.OK() {
			span.SetAttributes(attribute.String("calendar.source", strategy.Source().String()))
			return &Acquisition{Login: login, Contributions: contributions, Source: strategy.Source()}, nil
		}
		a.logger.Info("Acquisition strategy failed, falling back",
			zap.String("login", login),
			zap.String("strategy", strategy.Source().String()),
			zap.String("outcome", outcome.String()),
		)
		last = outcome
	}

	if last.Kind == remote.RateLimited {
		a.logger.Warn("All sources rate limited, serving mock data",
			zap.String("login", login),
		)
		return a.useMock(ctx, login, w, span)
	}

	err := apperrors.NewSourcesExhaustedError(errors.New(last.String()))
	observability.RecordError(span, err)
	return nil, err
}

func (a *Aggregator) try(ctx context.Context, s Strategy, login string, w calendar.Window) (calendar.ContributionMap, remote.Outcome) {
	ctx, span := tracer.Start(ctx, "Strategy."+s.Source().String())
	defer span.End()

	contributions, outcome := s.Acquire(ctx, login, w)
	span.SetAttributes(attribute.String("github.outcome", outcome.Kind.String()))
	return contributions, outcome
}

func (a *Aggregator) useMock(ctx context.Context, login string, w calendar.Window, span trace.Span) (*Acquisition, error) {
	contributions, _ := a.mock.Acquire(ctx, login, w)
	span.SetAttributes(attribute.String("calendar.source", calendar.SourceMock.String()))
	return &Acquisition{Login: login, Contributions: contributions, Source: calendar.SourceMock}, nil
}
