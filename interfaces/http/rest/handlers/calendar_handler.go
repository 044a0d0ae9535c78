package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/konstantinWDK/github-light-calendar/application/queries"
	querybus "github.com/konstantinWDK/github-light-calendar/application/queries/bus"
	apperrors "github.com/konstantinWDK/github-light-calendar/pkg/errors"
)

// Response headers describing how a calendar was served.
const (
	HeaderCache  = "X-Cache"
	HeaderSource = "X-Calendar-Source"
)

// CalendarHandler handles contribution calendar requests
type CalendarHandler struct {
	queryBus *querybus.QueryBus
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(queryBus *querybus.QueryBus, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetCalendar handles GET /api/calendar?username=
func (h *CalendarHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	query := queries.GetCalendarQuery{
		Username: r.URL.Query().Get("username"),
	}

	out, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, ok := out.(*queries.GetCalendarResult)
	if !ok {
		h.errors.Handle(w, r, apperrors.NewInternalError("unexpected query result"))
		return
	}

	cacheStatus := "MISS"
	if result.Cached {
		cacheStatus = "HIT"
	}
	w.Header().Set(HeaderCache, cacheStatus)
	w.Header().Set(HeaderSource, result.Source.String())

	h.respondJSON(w, http.StatusOK, result.Result)
}

func (h *CalendarHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
