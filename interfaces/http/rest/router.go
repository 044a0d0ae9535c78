package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	querybus "github.com/konstantinWDK/github-light-calendar/application/queries/bus"
	"github.com/konstantinWDK/github-light-calendar/interfaces/http/rest/handlers"
	"github.com/konstantinWDK/github-light-calendar/interfaces/http/rest/middleware"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
	"github.com/konstantinWDK/github-light-calendar/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	queryBus     *querybus.QueryBus
	metrics      *observability.Collector
	limiter      middleware.Limiter
	errorHandler *apperrors.ErrorHandler
	logger       *zap.Logger
}

// NewRouter creates a new router instance. metrics and limiter may be nil to
// disable the metrics endpoint and inbound throttling.
func NewRouter(
	queryBus *querybus.QueryBus,
	metrics *observability.Collector,
	limiter middleware.Limiter,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *Router {
	return &Router{
		queryBus:     queryBus,
		metrics:      metrics,
		limiter:      limiter,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	// The widget is embedded on arbitrary sites
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{handlers.HeaderCache, handlers.HeaderSource, "X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	calendarHandler := handlers.NewCalendarHandler(rt.queryBus, rt.errorHandler, rt.logger)
	router.Group(func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.errorHandler, rt.logger))
		}
		r.Get("/", calendarHandler.GetCalendar)
		r.Get("/api/calendar", calendarHandler.GetCalendar)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))
}
