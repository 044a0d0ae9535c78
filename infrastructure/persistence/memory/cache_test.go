package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestCache_PutGet(t *testing.T) {
	c := New()

	entry := calendar.CacheEntry{
		Result:    calendar.Result{User: "octocat", Total: 4},
		CreatedAt: time.Now(),
		Source:    calendar.SourceGraphQL,
	}
	require.NoError(t, c.Put(context.Background(), "octocat", entry))

	got, found, err := c.Get(context.Background(), "octocat")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry.Result, got.Result)

	_, found, _ = c.Get(context.Background(), "Octocat")
	assert.False(t, found)
}

func TestCache_StaleEntryStaysUntilOverwritten(t *testing.T) {
	// Arrange
	freshness := calendar.Freshness{TTL: time.Hour}
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	c := New()
	stale := calendar.CacheEntry{
		Result:    calendar.Result{User: "octocat", Total: 1},
		CreatedAt: now.Add(-2 * time.Hour),
		Source:    calendar.SourceGraphQL,
	}
	require.NoError(t, c.Put(context.Background(), "octocat", stale))

	// Act
	got, found, err := c.Get(context.Background(), "octocat")

	// Assert
	require.NoError(t, err)
	require.True(t, found, "expired entries are not deleted")
	assert.False(t, got.Fresh(now, freshness))

	fresh := calendar.CacheEntry{Result: calendar.Result{User: "octocat", Total: 2}, CreatedAt: now, Source: calendar.SourceGraphQL}
	require.NoError(t, c.Put(context.Background(), "octocat", fresh))
	got, _, _ = c.Get(context.Background(), "octocat")
	assert.Equal(t, 2, got.Result.Total)
	assert.Equal(t, 1, c.Len())
}

func TestDisabled(t *testing.T) {
	var c Disabled

	require.NoError(t, c.Put(context.Background(), "octocat", calendar.CacheEntry{}))
	_, found, err := c.Get(context.Background(), "octocat")

	assert.NoError(t, err)
	assert.False(t, found)
}
