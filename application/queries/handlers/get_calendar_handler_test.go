package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/konstantinWDK/github-light-calendar/application/queries"
	"github.com/konstantinWDK/github-light-calendar/application/services"
	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/infrastructure/persistence/memory"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
	"github.com/konstantinWDK/github-light-calendar/pkg/observability"
)

// MockAggregator is a mock implementation of Aggregator
type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Aggregate(ctx context.Context, username string) (*services.Acquisition, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Acquisition), args.Error(1)
}

// failingCache returns errors from every call
type failingCache struct{}

func (failingCache) Get(context.Context, string) (calendar.CacheEntry, bool, error) {
	return calendar.CacheEntry{}, false, apperrors.NewCacheUnavailableError("read", errors.New("disk gone"))
}

func (failingCache) Put(context.Context, string, calendar.CacheEntry) error {
	return apperrors.NewCacheUnavailableError("write", errors.New("disk gone"))
}

var (
	testNow   = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	freshness = calendar.Freshness{TTL: time.Hour}
)

func acquisition(source calendar.Source) *services.Acquisition {
	tally := calendar.NewTally(calendar.NewWindow(testNow, time.UTC))
	tally.Set("2026-10-14", 3)
	tally.Set("2026-10-15", 2)
	return &services.Acquisition{
		Login:         "octocat",
		Contributions: tally.Freeze(),
		Source:        source,
	}
}

func newHandler(cache *memory.Cache, agg Aggregator, metrics *observability.Collector) *GetCalendarHandler {
	h := NewGetCalendarHandler(cache, agg, freshness, metrics, zap.NewNop())
	h.now = func() time.Time { return testNow }
	return h
}

func TestGetCalendarHandler_MissThenHit(t *testing.T) {
	// Arrange
	cache := memory.New()
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "octocat").Return(acquisition(calendar.SourceGraphQL), nil).Once()
	metrics := observability.NewCollector("test")
	h := newHandler(cache, agg, metrics)
	q := queries.GetCalendarQuery{Username: "octocat"}

	// Act
	first, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	second, err := h.Handle(context.Background(), q)
	require.NoError(t, err)

	// Assert
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, calendar.SourceGraphQL, second.Source)
	assert.Equal(t, 5, first.Result.Total)

	firstJSON, _ := json.Marshal(first.Result)
	secondJSON, _ := json.Marshal(second.Result)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, firstJSON, secondJSON)

	agg.AssertNumberOfCalls(t, "Aggregate", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Acquisitions.WithLabelValues("graphql")))
}

func TestGetCalendarHandler_StaleEntryIsRefetched(t *testing.T) {
	// Arrange
	cache := memory.New()
	require.NoError(t, cache.Put(context.Background(), "octocat", calendar.CacheEntry{
		Result:    calendar.Result{User: "octocat", Total: 99},
		CreatedAt: testNow.Add(-time.Hour),
		Source:    calendar.SourceREST,
	}))
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "octocat").Return(acquisition(calendar.SourceREST), nil)
	h := newHandler(cache, agg, nil)

	// Act
	got, err := h.Handle(context.Background(), queries.GetCalendarQuery{Username: "octocat"})

	// Assert
	require.NoError(t, err)
	assert.False(t, got.Cached)
	assert.Equal(t, 5, got.Result.Total)

	stored, found, _ := cache.Get(context.Background(), "octocat")
	require.True(t, found)
	assert.Equal(t, testNow, stored.CreatedAt)
	assert.Equal(t, 5, stored.Result.Total)
}

func TestGetCalendarHandler_MockNotCachedByDefault(t *testing.T) {
	cache := memory.New()
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "octocat").Return(acquisition(calendar.SourceMock), nil)
	h := newHandler(cache, agg, nil)

	got, err := h.Handle(context.Background(), queries.GetCalendarQuery{Username: "octocat"})

	require.NoError(t, err)
	assert.Equal(t, calendar.SourceMock, got.Source)
	assert.Equal(t, 0, cache.Len())
}

func TestGetCalendarHandler_MockCachedWithMockTTL(t *testing.T) {
	// Arrange
	cache := memory.New()
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "octocat").Return(acquisition(calendar.SourceMock), nil).Once()
	h := NewGetCalendarHandler(cache, agg, calendar.Freshness{TTL: time.Hour, MockTTL: time.Minute}, nil, zap.NewNop())
	now := testNow
	h.now = func() time.Time { return now }
	q := queries.GetCalendarQuery{Username: "octocat"}

	// Act
	_, err := h.Handle(context.Background(), q)
	require.NoError(t, err)
	now = now.Add(30 * time.Second)
	got, err := h.Handle(context.Background(), q)
	require.NoError(t, err)

	// Assert
	assert.True(t, got.Cached)
	assert.Equal(t, calendar.SourceMock, got.Source)
	agg.AssertExpectations(t)
}

func TestGetCalendarHandler_CacheIsCaseSensitive(t *testing.T) {
	cache := memory.New()
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, mock.Anything).Return(acquisition(calendar.SourceGraphQL), nil)
	h := newHandler(cache, agg, nil)

	_, _ = h.Handle(context.Background(), queries.GetCalendarQuery{Username: "octocat"})
	got, err := h.Handle(context.Background(), queries.GetCalendarQuery{Username: "Octocat"})

	require.NoError(t, err)
	assert.False(t, got.Cached)
	agg.AssertNumberOfCalls(t, "Aggregate", 2)
}

func TestGetCalendarHandler_CacheFailuresAreNotFatal(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.WarnLevel)
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "octocat").Return(acquisition(calendar.SourceGraphQL), nil)
	h := NewGetCalendarHandler(failingCache{}, agg, freshness, nil, zap.New(core))

	// Act
	got, err := h.Handle(context.Background(), queries.GetCalendarQuery{Username: "octocat"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "octocat", got.Result.User)
	assert.Equal(t, 1, logs.FilterMessage("Cache read failed, treating as miss").Len())
	assert.Equal(t, 1, logs.FilterMessage("Cache write failed").Len())
}

func TestGetCalendarHandler_AggregatorErrorPropagates(t *testing.T) {
	cache := memory.New()
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "ghost").Return(nil, apperrors.NewUserNotFoundError("ghost"))
	h := newHandler(cache, agg, nil)

	_, err := h.Handle(context.Background(), queries.GetCalendarQuery{Username: "ghost"})

	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, 0, cache.Len())
}

func TestGetCalendarHandler_AsQueryHandler(t *testing.T) {
	agg := new(MockAggregator)
	agg.On("Aggregate", mock.Anything, "octocat").Return(acquisition(calendar.SourceREST), nil)
	h := newHandler(memory.New(), agg, nil)

	out, err := h.AsQueryHandler().Handle(context.Background(), queries.GetCalendarQuery{Username: "octocat"})

	require.NoError(t, err)
	result, ok := out.(*queries.GetCalendarResult)
	require.True(t, ok)
	assert.Equal(t, calendar.SourceREST, result.Source)
}
