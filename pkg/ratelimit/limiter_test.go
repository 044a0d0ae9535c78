package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSlidingWindowLimiter_Allow(t *testing.T) {
	// Arrange
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	l := NewSlidingWindowLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	// Act / Assert
	ok, _ := l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "a")
	assert.False(t, ok, "third request inside the window")

	ok, _ = l.Allow(ctx, "b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "a")
	assert.True(t, ok, "window slid past the first requests")
}

func TestIPRateLimiter_SetLimit(t *testing.T) {
	l := NewIPRateLimiter(1)
	ctx := context.Background()

	ok, _ := l.Allow(ctx, "192.0.2.1")
	require.True(t, ok)
	ok, _ = l.Allow(ctx, "192.0.2.1")
	require.False(t, ok)

	l.SetLimit(3)

	assert.Equal(t, 3, l.Limit())
	ok, _ = l.Allow(ctx, "192.0.2.1")
	assert.True(t, ok, "raised limit applies to a client already throttled")
}

func TestSlidingWindowLimiter_Reset(t *testing.T) {
	l := NewSlidingWindowLimiter(1, time.Minute)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	require.NoError(t, l.Reset(ctx, "a"))
	ok, _ := l.Allow(ctx, "a")

	assert.True(t, ok)
}

func TestSlidingWindowLimiter_Prune(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	l := NewSlidingWindowLimiter(5, time.Minute)
	l.now = func() time.Time { return now }
	_, _ = l.Allow(context.Background(), "old")
	now = now.Add(45 * time.Second)
	_, _ = l.Allow(context.Background(), "recent")
	now = now.Add(30 * time.Second)

	assert.Equal(t, 1, l.Prune())
	assert.Len(t, l.windows, 1)
}

func TestSlidingWindowLimiter_Concurrent(t *testing.T) {
	l := NewSlidingWindowLimiter(50, time.Minute)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(context.Background(), "shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}

func TestIPRateLimiter_RunStopsOnCancel(t *testing.T) {
	l := NewIPRateLimiter(10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 10, l.Limit())
}
