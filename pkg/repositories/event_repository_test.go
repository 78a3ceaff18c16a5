//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civilnews/civic-engine/pkg/models"
	"github.com/civilnews/civic-engine/pkg/testhelpers"
)

type eventTestContext struct {
	t              *testing.T
	testDB         *testhelpers.TestDB
	repo           EventRepository
	neighbourhoods NeighbourhoodRepository
}

func setupEventTest(t *testing.T) *eventTestContext {
	testDB := testhelpers.GetTestDB(t)
	neighbourhoods := NewNeighbourhoodRepository(testDB.DB)
	tc := &eventTestContext{
		t:              t,
		testDB:         testDB,
		repo:           NewEventRepository(testDB.DB, neighbourhoods),
		neighbourhoods: neighbourhoods,
	}
	tc.truncateEvents()
	return tc
}

func (tc *eventTestContext) truncateEvents() {
	tc.t.Helper()
	_, err := tc.testDB.DB.Exec(context.Background(), `TRUNCATE events`)
	if err != nil {
		tc.t.Fatalf("failed to truncate events: %v", err)
	}
}

func (tc *eventTestContext) countEvents() int {
	tc.t.Helper()
	var count int
	err := tc.testDB.DB.QueryRow(context.Background(), `SELECT COUNT(*) FROM events`).Scan(&count)
	if err != nil {
		tc.t.Fatalf("failed to count events: %v", err)
	}
	return count
}

func keyedEvent(key, title string) *models.Event {
	published := time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC)
	starts := published
	return &models.Event{
		Source:      models.SourceServiceRequests,
		SourceKey:   &key,
		EventType:   models.EventTypeServiceRequest,
		Title:       title,
		Summary:     title + " happened.",
		Location:    models.NewPoint(-123.1, 49.28),
		StartsAt:    &starts,
		PublishedAt: published,
	}
}

func TestUpsertIsIdempotentForNaturalKeySources(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	batch := func() []*models.Event {
		return []*models.Event{
			keyedEvent("2024-03-15T15:30:00Z|800 Main St", "Pothole Repair"),
			keyedEvent("2024-03-15T15:30:00Z|22 Water St", "Graffiti"),
		}
	}

	first, err := tc.repo.Upsert(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)
	assert.Equal(t, 0, first.Updated)

	second, err := tc.repo.Upsert(ctx, batch())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted, "re-run must not insert")
	assert.Equal(t, 2, second.Updated)

	assert.Equal(t, 2, tc.countEvents(), "row count converges")
}

func TestUpsertOverwritesMutableFields(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	original := keyedEvent("k1", "Pothole Repair")
	_, err := tc.repo.Upsert(ctx, []*models.Event{original})
	require.NoError(t, err)

	updated := keyedEvent("k1", "Pothole Repair")
	updated.Summary = "Pothole Repair happened. Status: CLOSED."
	ends := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	updated.EndsAt = &ends

	_, err = tc.repo.Upsert(ctx, []*models.Event{updated})
	require.NoError(t, err)
	assert.Equal(t, original.ID, updated.ID, "update path keeps the row identity")

	stored, err := tc.repo.ListOverlapping(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Pothole Repair happened. Status: CLOSED.", stored[0].Summary)
	require.NotNil(t, stored[0].EndsAt)
	assert.True(t, stored[0].EndsAt.Equal(ends))
}

func TestUpsertAppendsEventsWithoutNaturalKey(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	closure := func() *models.Event {
		return &models.Event{
			Source:      models.SourceRoadClosures,
			EventType:   models.EventTypeRoadClosure,
			Title:       "Broadway Subway",
			Summary:     "Road closure update",
			PublishedAt: time.Now().UTC(),
		}
	}

	first, err := tc.repo.Upsert(ctx, []*models.Event{closure()})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Inserted)

	second, err := tc.repo.Upsert(ctx, []*models.Event{closure()})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Inserted, "no natural key means append, not update")

	assert.Equal(t, 2, tc.countEvents())
}

func TestUpsertCoordinateRoundTrip(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	event := keyedEvent("coord-key", "Pothole Repair")
	_, err := tc.repo.Upsert(ctx, []*models.Event{event})
	require.NoError(t, err)

	stored, err := tc.repo.ListOverlapping(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].Location)
	assert.Equal(t, -123.1, stored[0].Location.Lon, "no axis swap, no precision loss")
	assert.Equal(t, 49.28, stored[0].Location.Lat)
}

func TestUpsertResolvesDeferredNeighbourhoodName(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	cityID, err := tc.neighbourhoods.EnsureCity(ctx, "Vancouver", "")
	require.NoError(t, err)
	_, err = tc.neighbourhoods.UpsertBoundaries(ctx, cityID, []*models.Neighbourhood{
		{Name: "Strathcona"},
	})
	require.NoError(t, err)

	known := keyedEvent("n1", "Pothole Repair")
	known.NeighbourhoodName = "Strathcona"
	unknown := keyedEvent("n2", "Graffiti")
	unknown.NeighbourhoodName = "Atlantis"

	_, err = tc.repo.Upsert(ctx, []*models.Event{known, unknown})
	require.NoError(t, err, "a resolution miss must not fail the batch")

	assert.NotNil(t, known.NeighbourhoodID)
	assert.Nil(t, unknown.NeighbourhoodID)
}

func TestUpsertDefaultsBookkeepingToPublishedAt(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	event := keyedEvent("b1", "Pothole Repair")
	_, err := tc.repo.Upsert(ctx, []*models.Event{event})
	require.NoError(t, err)

	var createdAt, updatedAt time.Time
	err = tc.testDB.DB.QueryRow(ctx,
		`SELECT created_at, updated_at FROM events WHERE source_key = 'b1'`).
		Scan(&createdAt, &updatedAt)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(event.PublishedAt))
	assert.True(t, updatedAt.Equal(event.PublishedAt))
}

func TestListOverlappingWindowSemantics(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	mk := func(key string, starts, ends *time.Time) *models.Event {
		e := keyedEvent(key, "Window "+key)
		e.StartsAt = starts
		e.EndsAt = ends
		e.PublishedAt = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		return e
	}
	ts := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	_, err := tc.repo.Upsert(ctx, []*models.Event{
		mk("w1", nil, ts(2024, 1, 10)),            // no start, ends inside window
		mk("w2", ts(2024, 1, 5), nil),             // starts inside window, never ends
		mk("w3", ts(2024, 2, 1), ts(2024, 2, 5)),  // entirely after window
	})
	require.NoError(t, err)

	events, err := tc.repo.ListOverlapping(ctx,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)

	require.Len(t, events, 2)
	keys := []string{*events[0].SourceKey, *events[1].SourceKey}
	assert.ElementsMatch(t, []string{"w1", "w2"}, keys)
}

func TestListOverlappingFiltersByTypeAndOrdersByPublishedAt(t *testing.T) {
	tc := setupEventTest(t)
	ctx := context.Background()

	older := keyedEvent("o1", "Older")
	older.PublishedAt = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	newer := keyedEvent("o2", "Newer")
	newer.PublishedAt = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	vote := keyedEvent("o3", "Vote")
	vote.EventType = models.EventTypeVote
	vote.PublishedAt = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	_, err := tc.repo.Upsert(ctx, []*models.Event{older, newer, vote})
	require.NoError(t, err)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	requests, err := tc.repo.ListOverlapping(ctx, from, to, models.EventTypeServiceRequest)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "Newer", requests[0].Title, "published_at descending")
	assert.Equal(t, "Older", requests[1].Title)

	votes, err := tc.repo.ListOverlapping(ctx, from, to, models.EventTypeVote)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "Vote", votes[0].Title)
}
