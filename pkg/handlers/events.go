package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/models"
	"github.com/civilnews/civic-engine/pkg/repositories"
)

// EventsHandler serves the canonical events feed.
type EventsHandler struct {
	events repositories.EventRepository
	logger *zap.Logger
}

func NewEventsHandler(events repositories.EventRepository, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{events: events, logger: logger.Named("events-handler")}
}

func (h *EventsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/events", h.List)
}

// EventListResponse wraps a page of events.
type EventListResponse struct {
	Events []*models.Event `json:"events"`
	Count  int             `json:"count"`
}

// List returns events whose active period overlaps the requested date range.
// Both dates are inclusive: start_date opens at midnight UTC and end_date
// closes at the end of that day.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parseDateParam(query.Get("start_date"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_start_date", "start_date must be YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(query.Get("end_date"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_end_date", "end_date must be YYYY-MM-DD")
		return
	}
	if from.IsZero() || to.IsZero() {
		_ = ErrorResponse(w, http.StatusBadRequest, "missing_date_range", "start_date and end_date are required")
		return
	}
	if to.Before(from) {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_date_range", "end_date must not precede start_date")
		return
	}

	// Close the window at the end of the requested day.
	to = to.Add(24*time.Hour - time.Nanosecond)

	events, err := h.events.ListOverlapping(r.Context(), from, to, query.Get("event_type"))
	if err != nil {
		h.logger.Error("Failed to list events", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list events")
		return
	}

	if err := WriteJSON(w, http.StatusOK, EventListResponse{Events: events, Count: len(events)}); err != nil {
		h.logger.Error("Failed to encode events response", zap.Error(err))
	}
}

func parseDateParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
