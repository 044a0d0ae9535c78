package handlers

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/application/ports"
	"github.com/konstantinWDK/github-light-calendar/application/queries"
	"github.com/konstantinWDK/github-light-calendar/application/queries/bus"
	"github.com/konstantinWDK/github-light-calendar/application/services"
	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/pkg/observability"
)

var tracer = otel.Tracer("github-light-calendar/queries")

// Aggregator acquires a fresh contribution map for a username
type Aggregator interface {
	Aggregate(ctx context.Context, username string) (*services.Acquisition, error)
}

// GetCalendarHandler serves calendars from the response cache, falling back
// to a fresh acquisition on a miss or a stale entry.
type GetCalendarHandler struct {
	cache      ports.ResponseCache
	aggregator Aggregator
	freshness  calendar.Freshness
	now        func() time.Time
	metrics    *observability.Collector
	logger     *zap.Logger
}

// NewGetCalendarHandler creates a new calendar query handler. metrics may be nil.
func NewGetCalendarHandler(
	cache ports.ResponseCache,
	aggregator Aggregator,
	freshness calendar.Freshness,
	metrics *observability.Collector,
	logger *zap.Logger,
) *GetCalendarHandler {
	return &GetCalendarHandler{
		cache:      cache,
		aggregator: aggregator,
		freshness:  freshness,
		now:        time.Now,
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle executes the calendar query
func (h *GetCalendarHandler) Handle(ctx context.Context, query queries.GetCalendarQuery) (*queries.GetCalendarResult, error) {
	ctx, span := tracer.Start(ctx, "GetCalendar")
	defer span.End()
	span.SetAttributes(attribute.String("github.username", query.Username))

	if entry, ok := h.lookup(ctx, query.Username); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &queries.GetCalendarResult{
			Result: entry.Result,
			Source: entry.Source,
			Cached: true,
		}, nil
	}

	acq, err := h.aggregator.Aggregate(ctx, query.Username)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	h.metrics.RecordAcquisition(acq.Source.String())

	result := acq.Result()
	h.store(ctx, query.Username, calendar.CacheEntry{
		Result:    result,
		CreatedAt: h.now(),
		Source:    acq.Source,
	})

	return &queries.GetCalendarResult{
		Result: result,
		Source: acq.Source,
	}, nil
}

// AsQueryHandler adapts the handler for registration on a query bus
func (h *GetCalendarHandler) AsQueryHandler() bus.QueryHandler {
	return bus.QueryHandlerFunc(func(ctx context.Context, q bus.Query) (interface{}, error) {
		query, ok := q.(queries.GetCalendarQuery)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", q)
		}
		return h.Handle(ctx, query)
	})
}

func (h *GetCalendarHandler) lookup(ctx context.Context, username string) (calendar.CacheEntry, bool) {
	entry, found, err := h.cache.Get(ctx, username)
	switch {
	case err != nil:
		h.logger.Warn("Cache read failed, treating as miss",
			zap.String("username", username),
			zap.Error(err),
		)
		h.metrics.RecordCacheLookup("error")
		return calendar.CacheEntry{}, false
	case !found:
		h.metrics.RecordCacheLookup("miss")
		return calendar.CacheEntry{}, false
	case !entry.Fresh(h.now(), h.freshness):
		h.metrics.RecordCacheLookup("stale")
		return calendar.CacheEntry{}, false
	}

	h.metrics.RecordCacheLookup("hit")
	return entry, true
}

func (h *GetCalendarHandler) store(ctx context.Context, username string, entry calendar.CacheEntry) {
	if h.freshness.TTLFor(entry.Source) <= 0 {
		return
	}
	if err := h.cache.Put(ctx, username, entry); err != nil {
		h.logger.Warn("Cache write failed",
			zap.String("username", username),
			zap.String("source", entry.Source.String()),
			zap.Error(err),
		)
	}
}
