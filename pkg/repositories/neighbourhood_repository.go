package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civilnews/civic-engine/pkg/database"
	"github.com/civilnews/civic-engine/pkg/models"
)

// NeighbourhoodRepository defines data access for neighbourhood rows.
// The pipeline only resolves names to ids; the seed methods are used by
// the one-shot boundary seeding script.
type NeighbourhoodRepository interface {
	// ResolveByName maps a free-text area name to a neighbourhood id.
	// Blank or whitespace-only names resolve to nil without touching the
	// store; an unknown name resolves to nil as well. Neither is an error.
	ResolveByName(ctx context.Context, name string) (*uuid.UUID, error)

	// List returns all neighbourhoods ordered by name.
	List(ctx context.Context) ([]*models.Neighbourhood, error)

	// EnsureCity upserts a city by name and returns its id.
	EnsureCity(ctx context.Context, name, apiURL string) (uuid.UUID, error)

	// UpsertBoundaries bulk-upserts neighbourhood rows by name under the
	// given city, replacing boundary and label point geometry.
	UpsertBoundaries(ctx context.Context, cityID uuid.UUID, rows []*models.Neighbourhood) (int, error)
}

type neighbourhoodRepository struct {
	db *database.DB
}

// NewNeighbourhoodRepository creates a neighbourhood repository backed by
// the given pool.
func NewNeighbourhoodRepository(db *database.DB) NeighbourhoodRepository {
	return &neighbourhoodRepository{db: db}
}

func (r *neighbourhoodRepository) ResolveByName(ctx context.Context, name string) (*uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var id uuid.UUID
	err := r.db.QueryRow(ctx,
		`SELECT id FROM neighbourhoods WHERE name = $1 LIMIT 1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve neighbourhood %q: %w", name, err)
	}
	return &id, nil
}

func (r *neighbourhoodRepository) List(ctx context.Context) ([]*models.Neighbourhood, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, city_id, name, created_at FROM neighbourhoods ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list neighbourhoods: %w", err)
	}
	defer rows.Close()

	var neighbourhoods []*models.Neighbourhood
	for rows.Next() {
		var n models.Neighbourhood
		if err := rows.Scan(&n.ID, &n.CityID, &n.Name, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan neighbourhood: %w", err)
		}
		neighbourhoods = append(neighbourhoods, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating neighbourhoods: %w", err)
	}
	return neighbourhoods, nil
}

func (r *neighbourhoodRepository) EnsureCity(ctx context.Context, name, apiURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO cities (name, api_url)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET api_url = EXCLUDED.api_url
		RETURNING id`, name, apiURL).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure city %q: %w", name, err)
	}
	return id, nil
}

func (r *neighbourhoodRepository) UpsertBoundaries(ctx context.Context, cityID uuid.UUID, neighbourhoods []*models.Neighbourhood) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback on defer is best-effort

	count := 0
	for _, n := range neighbourhoods {
		if n == nil || strings.TrimSpace(n.Name) == "" {
			continue
		}

		var labelPoint *string
		if n.LabelPoint != nil {
			data, err := json.Marshal(n.LabelPoint)
			if err != nil {
				return 0, fmt.Errorf("failed to encode label point for %q: %w", n.Name, err)
			}
			s := string(data)
			labelPoint = &s
		}
		var boundary *string
		if len(n.Boundary) > 0 {
			s := string(n.Boundary)
			boundary = &s
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO neighbourhoods (city_id, name, boundary, label_point)
			VALUES ($1, $2, $3::jsonb, $4::jsonb)
			ON CONFLICT (name) DO UPDATE
			SET city_id = EXCLUDED.city_id,
			    boundary = EXCLUDED.boundary,
			    label_point = EXCLUDED.label_point`,
			cityID, strings.TrimSpace(n.Name), boundary, labelPoint)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert neighbourhood %q: %w", n.Name, err)
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return count, nil
}

var _ NeighbourhoodRepository = (*neighbourhoodRepository)(nil)
