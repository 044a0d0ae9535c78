// Package ports declares the interfaces the application layer depends on.
// Implementations live under infrastructure/.
package ports

import (
	"context"
	"time"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/domain/remote"
)

// ActivitySource reads a user's public activity from GitHub. Every method
// resolves to a classified outcome; none of them return Go errors.
type ActivitySource interface {
	// Authenticated reports whether a usable API token is configured.
	Authenticated() bool

	// LookupUser checks that the user exists and returns the canonical login.
	LookupUser(ctx context.Context, username string) (string, remote.Outcome)

	// ContributionCalendar returns GitHub's per-day contribution counts.
	// Requires a token.
	ContributionCalendar(ctx context.Context, login string) ([]remote.DayCount, remote.Outcome)

	// PublicEvents returns the creation times of the user's most recent
	// public events (a single page).
	PublicEvents(ctx context.Context, login string) ([]time.Time, remote.Outcome)

	// RecentRepositories returns up to limit repositories, most recently
	// updated first.
	RecentRepositories(ctx context.Context, login string, limit int) ([]remote.Repository, remote.Outcome)

	// Commits returns author dates of commits in repo by author since the
	// given time (a single page).
	Commits(ctx context.Context, repo, author string, since time.Time) ([]time.Time, remote.Outcome)
}

// ResponseCache stores finished calendar results by queried identity.
// Implementations must replace entries atomically; a reader never observes
// a partially written entry.
type ResponseCache interface {
	// Get returns the stored entry for identity regardless of its age.
	// Callers decide freshness.
	Get(ctx context.Context, identity string) (calendar.CacheEntry, bool, error)

	// Put stores entry for identity, replacing any previous entry.
	Put(ctx context.Context, identity string, entry calendar.CacheEntry) error
}
