package client

import (
	"context"
	"sync"
	"time"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/pkg/stats"
)

// Phase is where a Calendar is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of what the widget should display. Result and Stats
// are set only in PhaseReady, Err only in PhaseFailed.
type State struct {
	Phase    Phase
	Username string
	Result   calendar.Result
	Stats    stats.Stats
	Err      error
}

// Fetcher retrieves a calendar for a username
type Fetcher interface {
	Fetch(ctx context.Context, username string) (calendar.Result, error)
}

// Calendar tracks the display state for one username. Every Load issues its
// own request; when several are in flight the last one to finish decides the
// state.
type Calendar struct {
	fetcher  Fetcher
	username string
	now      func() time.Time
	loc      *time.Location
	onChange func(State)

	mu    sync.Mutex
	state State

	// generation is bumped by Destroy; responses from an older generation are dropped.
	generation uint64
}

// CalendarOption customizes a Calendar
type CalendarOption func(*Calendar)

// WithClock sets the clock used to end the current-streak scan at today.
func WithClock(now func() time.Time) CalendarOption {
	return func(c *Calendar) { c.now = now }
}

// WithLocation sets the time zone the proxy lays out its dates in, so that
// "today" matches the grid. Defaults to UTC.
func WithLocation(loc *time.Location) CalendarOption {
	return func(c *Calendar) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// OnChange registers a callback run after every state transition. It is
// called without the Calendar's lock held.
func OnChange(fn func(State)) CalendarOption {
	return func(c *Calendar) { c.onChange = fn }
}

// NewCalendar creates an idle calendar for username
func NewCalendar(fetcher Fetcher, username string, opts ...CalendarOption) *Calendar {
	c := &Calendar{
		fetcher:  fetcher,
		username: username,
		now:      time.Now,
		loc:      time.UTC,
		state:    State{Phase: PhaseIdle, Username: username},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the calendar and returns the state it produced. A Destroy
// while the request is in flight discards its response; later loads work
// as usual.
func (c *Calendar) Load(ctx context.Context) State {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	c.transition(gen, State{Phase: PhaseLoading, Username: c.username})

	result, err := c.fetcher.Fetch(ctx, c.username)

	next := State{Username: c.username}
	if err != nil {
		next.Phase = PhaseFailed
		next.Err = err
	} else {
		next.Phase = PhaseReady
		next.Result = result
		next.Stats = stats.Derive(result, stats.AsOf(calendar.DateKey(c.now().In(c.loc))))
	}
	if !c.transition(gen, next) {
		return c.State()
	}
	return next
}

// Reload fetches the calendar again
func (c *Calendar) Reload(ctx context.Context) State {
	return c.Load(ctx)
}

// State returns the current state
func (c *Calendar) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Destroy clears the state. Requests in flight are not cancelled.
func (c *Calendar) Destroy() {
	c.mu.Lock()
	c.generation++
	c.state = State{Phase: PhaseIdle, Username: c.username}
	c.mu.Unlock()
}

func (c *Calendar) transition(gen uint64, next State) bool {
	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()
		return false
	}
	c.state = next
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(next)
	}
	return true
}
