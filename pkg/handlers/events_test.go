package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/models"
)

type stubEventRepository struct {
	gotFrom      time.Time
	gotTo        time.Time
	gotEventType string
	events       []*models.Event
	err          error
}

func (s *stubEventRepository) Upsert(ctx context.Context, events []*models.Event) (*models.UpsertResult, error) {
	panic("not used")
}

func (s *stubEventRepository) ListOverlapping(ctx context.Context, from, to time.Time, eventType string) ([]*models.Event, error) {
	s.gotFrom = from
	s.gotTo = to
	s.gotEventType = eventType
	return s.events, s.err
}

func serveEvents(t *testing.T, repo *stubEventRepository, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewEventsHandler(repo, zap.NewNop()).RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestEventsListParsesWindow(t *testing.T) {
	repo := &stubEventRepository{events: []*models.Event{
		{Title: "Pothole Repair", EventType: models.EventTypeServiceRequest},
	}}

	rec := serveEvents(t, repo, "/api/events?start_date=2024-01-01&end_date=2024-01-31&event_type=SERVICE_REQUEST")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.gotFrom)
	// Inclusive end: the window reaches the end of Jan 31.
	assert.Equal(t, 31, repo.gotTo.Day())
	assert.Equal(t, 23, repo.gotTo.Hour())
	assert.Equal(t, "SERVICE_REQUEST", repo.gotEventType)

	var body EventListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Pothole Repair", body.Events[0].Title)
}

func TestEventsListValidation(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		errorCode string
	}{
		{name: "missing dates", target: "/api/events", errorCode: "missing_date_range"},
		{name: "missing end date", target: "/api/events?start_date=2024-01-01", errorCode: "missing_date_range"},
		{name: "malformed start", target: "/api/events?start_date=Jan-1&end_date=2024-01-31", errorCode: "invalid_start_date"},
		{name: "malformed end", target: "/api/events?start_date=2024-01-01&end_date=31/01/2024", errorCode: "invalid_end_date"},
		{name: "inverted range", target: "/api/events?start_date=2024-02-01&end_date=2024-01-01", errorCode: "invalid_date_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveEvents(t, &stubEventRepository{}, tt.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.errorCode, body["error"])
		})
	}
}

func TestEventsListRepositoryError(t *testing.T) {
	repo := &stubEventRepository{err: errors.New("connection refused")}
	rec := serveEvents(t, repo, "/api/events?start_date=2024-01-01&end_date=2024-01-31")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestEventsListSingleDayWindow(t *testing.T) {
	repo := &stubEventRepository{}
	rec := serveEvents(t, repo, "/api/events?start_date=2024-06-15&end_date=2024-06-15")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.gotTo.After(repo.gotFrom), "a single day still spans a non-empty window")
}
