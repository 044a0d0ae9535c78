package services

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/application/ports"
	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/domain/remote"
)

// DefaultRepositoryLimit caps how many repositories the REST strategy scans
// for commits.
const DefaultRepositoryLimit = 10

// Strategy is one way of acquiring a user's contributions. Strategies are
// tried in order until one reports an OK outcome.
type Strategy interface {
	Source() calendar.Source
	Acquire(ctx context.Context, login string, w calendar.Window) (calendar.ContributionMap, remote.Outcome)
}

// GraphQLStrategy reads GitHub's own contribution calendar. It needs a token
// and reports a transport error without calling out when none is configured.
type GraphQLStrategy struct {
	source ports.ActivitySource
	logger *zap.Logger
}

// NewGraphQLStrategy creates the GraphQL acquisition strategy
func NewGraphQLStrategy(source ports.ActivitySource, logger *zap.Logger) *GraphQLStrategy {
	return &GraphQLStrategy{source: source, logger: logger}
}

func (s *GraphQLStrategy) Source() calendar.Source {
	return calendar.SourceGraphQL
}

// Acquire maps the remote calendar onto the window. Remote days outside the
// window are dropped; window days the remote omits stay zero.
func (s *GraphQLStrategy) Acquire(ctx context.Context, login string, w calendar.Window) (calendar.ContributionMap, remote.Outcome) {
	if !s.source.Authenticated() {
		return calendar.ContributionMap{}, remote.Failure(0, "no token configured")
	}

	days, outcome := s.source.ContributionCalendar(ctx, login)
	if !outcome.OK() {
		return calendar.ContributionMap{}, outcome
	}

	tally := calendar.NewTally(w)
	dropped := 0
	for _, day := range days {
		if !tally.Set(day.Date, day.Count) {
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Debug("Ignored calendar days outside window",
			zap.String("login", login),
			zap.Int("dropped", dropped),
		)
	}

	return tally.Freeze(), outcome
}

// RESTStrategy approximates the calendar from a single page of public events
// and the commits of the most recently updated repositories. It under-counts
// relative to GraphQL.
type RESTStrategy struct {
	source    ports.ActivitySource
	repoLimit int
	logger    *zap.Logger
}

// NewRESTStrategy creates the REST acquisition strategy
func NewRESTStrategy(source ports.ActivitySource, repoLimit int, logger *zap.Logger) *RESTStrategy {
	if repoLimit <= 0 {
		repoLimit = DefaultRepositoryLimit
	}
	return &RESTStrategy{source: source, repoLimit: repoLimit, logger: logger}
}

func (s *RESTStrategy) Source() calendar.Source {
	return calendar.SourceREST
}

// Acquire fails only when both the events and the repositories call fail.
// Any other failed sub-fetch is logged and contributes nothing.
func (s *RESTStrategy) Acquire(ctx context.Context, login string, w calendar.Window) (calendar.ContributionMap, remote.Outcome) {
	tally := calendar.NewTally(w)

	events, eventsOutcome := s.source.PublicEvents(ctx, login)
	if eventsOutcome.OK() {
		for _, at := range events {
			tally.Add(at)
		}
	} else {
		s.logger.Info("Public events unavailable",
			zap.String("login", login),
			zap.String("outcome", eventsOutcome.String()),
		)
	}

	repos, reposOutcome := s.source.RecentRepositories(ctx, login, s.repoLimit)
	if !reposOutcome.OK() {
		s.logger.Info("Repositories unavailable",
			zap.String("login", login),
			zap.String("outcome", reposOutcome.String()),
		)
		if !eventsOutcome.OK() {
			return calendar.ContributionMap{}, remote.Worse(eventsOutcome, reposOutcome)
		}
		return tally.Freeze(), remote.Success(http.StatusOK)
	}

	for _, repo := range repos {
		if repo.UpdatedAt.Before(w.Since()) {
			continue
		}
		commits, outcome := s.source.Commits(ctx, repo.FullName, login, w.Since())
		if !outcome.OK() {
			s.logger.Info("Commits unavailable",
				zap.String("login", login),
				zap.String("repository", repo.FullName),
				zap.String("outcome", outcome.String()),
			)
			continue
		}
		for _, at := range commits {
			tally.Add(at)
		}
	}

	return tally.Freeze(), remote.Success(http.StatusOK)
}

// MockStrategy synthesizes plausible activity so the widget stays populated
// while GitHub is rate limiting. Its results are never authoritative.
type MockStrategy struct {
	intN func(n int) int
}

// NewMockStrategy creates a mock strategy. intN returns a value in [0,n);
// nil uses the process-wide math/rand/v2 source.
func NewMockStrategy(intN func(n int) int) *MockStrategy {
	if intN == nil {
		intN = rand.IntN
	}
	return &MockStrategy{intN: intN}
}

func (s *MockStrategy) Source() calendar.Source {
	return calendar.SourceMock
}

// Acquire assigns 0-8 contributions to weekdays and 0-3 to weekend days.
func (s *MockStrategy) Acquire(_ context.Context, _ string, w calendar.Window) (calendar.ContributionMap, remote.Outcome) {
	tally := calendar.NewTally(w)
	w.Each(func(day time.Time) {
		limit := 9
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			limit = 4
		}
		tally.Set(calendar.DateKey(day), s.intN(limit))
	})
	return tally.Freeze(), remote.Success(0)
}
