package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/civilnews/civic-engine/pkg/apperrors"
	"github.com/civilnews/civic-engine/pkg/database"
	"github.com/civilnews/civic-engine/pkg/models"
)

// EventRepository persists canonical events and serves the read path.
type EventRepository interface {
	// Upsert applies a batch of events in one transaction. Events with a
	// source key take the idempotent update-in-place path keyed by
	// (source, source_key); events without one are appended. Deferred
	// neighbourhood names are resolved per event before the decision.
	// Any failure rolls the whole batch back.
	Upsert(ctx context.Context, events []*models.Event) (*models.UpsertResult, error)

	// ListOverlapping returns events whose [starts_at, ends_at] interval
	// overlaps [from, to], treating a null start as already started and
	// a null end as never ending, ordered by published_at descending.
	// eventType filters when non-empty.
	ListOverlapping(ctx context.Context, from, to time.Time, eventType string) ([]*models.Event, error)
}

type eventRepository struct {
	db             *database.DB
	neighbourhoods NeighbourhoodRepository
}

// NewEventRepository creates an event repository backed by the given
// pool. The neighbourhood repository handles deferred name resolution
// inside Upsert.
func NewEventRepository(db *database.DB, neighbourhoods NeighbourhoodRepository) EventRepository {
	return &eventRepository{db: db, neighbourhoods: neighbourhoods}
}

// Columns replaced as one unit on the update path. created_at is never
// touched after the first insert.
const eventUpdateQuery = `
	UPDATE events
	SET event_type = $2, title = $3, summary = $4, location = $5::jsonb,
	    neighbourhood_id = $6, starts_at = $7, ends_at = $8,
	    published_at = $9, updated_at = $10
	WHERE id = $1`

const eventInsertQuery = `
	INSERT INTO events (source, source_key, event_type, title, summary, location,
	                    neighbourhood_id, starts_at, ends_at, published_at, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12)
	RETURNING id`

func (r *eventRepository) Upsert(ctx context.Context, events []*models.Event) (*models.UpsertResult, error) {
	result := &models.UpsertResult{}
	if len(events) == 0 {
		return result, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	for _, event := range events {
		if event == nil {
			continue
		}

		// Deferred resolution: a miss leaves the foreign key null and
		// the event still persists.
		if event.NeighbourhoodID == nil && event.NeighbourhoodName != "" {
			id, err := r.neighbourhoods.ResolveByName(ctx, event.NeighbourhoodName)
			if err != nil {
				return nil, err
			}
			event.NeighbourhoodID = id
		}

		applyBookkeepingDefaults(event)

		location, err := marshalLocation(event.Location)
		if err != nil {
			return nil, fmt.Errorf("failed to encode location for %q: %w", event.Title, err)
		}

		if event.SourceKey != nil {
			var existingID uuid.UUID
			err := tx.QueryRow(ctx,
				`SELECT id FROM events WHERE source = $1 AND source_key = $2`,
				event.Source, *event.SourceKey).Scan(&existingID)
			switch {
			case err == nil:
				if _, err := tx.Exec(ctx, eventUpdateQuery,
					existingID, event.EventType, event.Title, event.Summary, location,
					event.NeighbourhoodID, event.StartsAt, event.EndsAt,
					event.PublishedAt, event.UpdatedAt); err != nil {
					return nil, fmt.Errorf("failed to update event %s/%s: %w", event.Source, *event.SourceKey, err)
				}
				event.ID = existingID
				result.Updated++
				continue
			case !errors.Is(err, pgx.ErrNoRows):
				return nil, fmt.Errorf("failed to look up event %s/%s: %w", event.Source, *event.SourceKey, err)
			}
		}

		err = tx.QueryRow(ctx, eventInsertQuery,
			event.Source, event.SourceKey, event.EventType, event.Title, event.Summary, location,
			event.NeighbourhoodID, event.StartsAt, event.EndsAt,
			event.PublishedAt, event.CreatedAt, event.UpdatedAt).Scan(&event.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// Lost a race with a concurrent upsert of the same key.
				return nil, fmt.Errorf("event %s already persisted concurrently: %w", event.Source, apperrors.ErrConflict)
			}
			return nil, fmt.Errorf("failed to insert event %q: %w", event.Title, err)
		}
		result.Inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func (r *eventRepository) ListOverlapping(ctx context.Context, from, to time.Time, eventType string) ([]*models.Event, error) {
	query := `
		SELECT id, source, source_key, event_type, title, summary, location,
		       neighbourhood_id, starts_at, ends_at, published_at, created_at, updated_at
		FROM events
		WHERE (starts_at IS NULL OR starts_at <= $2)
		  AND (ends_at IS NULL OR ends_at >= $1)`
	args := []any{from, to}
	if eventType != "" {
		query += ` AND event_type = $3`
		args = append(args, eventType)
	}
	query += ` ORDER BY published_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var e models.Event
		var location []byte
		if err := rows.Scan(
			&e.ID, &e.Source, &e.SourceKey, &e.EventType, &e.Title, &e.Summary, &location,
			&e.NeighbourhoodID, &e.StartsAt, &e.EndsAt,
			&e.PublishedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(location) > 0 {
			var p models.Point
			if err := json.Unmarshal(location, &p); err != nil {
				return nil, fmt.Errorf("failed to decode stored location: %w", err)
			}
			e.Location = &p
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// applyBookkeepingDefaults fills created_at and updated_at with the
// published time when the transformer supplied no explicit
// last-modified time.
func applyBookkeepingDefaults(event *models.Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = event.PublishedAt
	}
	if event.UpdatedAt.IsZero() {
		event.UpdatedAt = event.PublishedAt
	}
}

// marshalLocation encodes a point to its stored GeoJSON form; nil stays
// NULL.
func marshalLocation(p *models.Point) (*string, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

var _ EventRepository = (*eventRepository)(nil)
