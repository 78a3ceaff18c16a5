package services

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/civilnews/civic-engine/pkg/jsonutil"
	"github.com/civilnews/civic-engine/pkg/models"
	"github.com/civilnews/civic-engine/pkg/repositories"
	"github.com/civilnews/civic-engine/pkg/sources"
)

// BoundarySeeder loads the local-area boundary dataset into the
// neighbourhoods table so event ingestion can resolve area names.
type BoundarySeeder struct {
	fetcher        Fetcher
	neighbourhoods repositories.NeighbourhoodRepository
	cityName       string
	cityURL        string
	logger         *zap.Logger
}

func NewBoundarySeeder(fetcher Fetcher, neighbourhoods repositories.NeighbourhoodRepository, cityName, cityURL string, logger *zap.Logger) *BoundarySeeder {
	return &BoundarySeeder{
		fetcher:        fetcher,
		neighbourhoods: neighbourhoods,
		cityName:       cityName,
		cityURL:        cityURL,
		logger:         logger.Named("seeder"),
	}
}

// Seed fetches boundary records and upserts the city and its
// neighbourhoods. Records without a name are skipped.
func (s *BoundarySeeder) Seed(ctx context.Context) (int, error) {
	raws, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch boundaries: %w", err)
	}

	neighbourhoods := make([]*models.Neighbourhood, 0, len(raws))
	for _, raw := range raws {
		record, ok := raw.(map[string]any)
		if !ok {
			s.logger.Warn("Skipping non-object boundary record")
			continue
		}
		neighbourhood, err := boundaryFromRecord(record)
		if err != nil {
			s.logger.Warn("Skipping boundary record", zap.Error(err))
			continue
		}
		neighbourhoods = append(neighbourhoods, neighbourhood)
	}

	cityID, err := s.neighbourhoods.EnsureCity(ctx, s.cityName, s.cityURL)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert city %q: %w", s.cityName, err)
	}

	count, err := s.neighbourhoods.UpsertBoundaries(ctx, cityID, neighbourhoods)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert neighbourhoods: %w", err)
	}

	s.logger.Info("seeded neighbourhood boundaries",
		zap.String("city", s.cityName),
		zap.Int("fetched", len(raws)),
		zap.Int("seeded", count))
	return count, nil
}

func boundaryFromRecord(record map[string]any) (*models.Neighbourhood, error) {
	name := jsonutil.StringField(record, "name")
	if name == "" {
		return nil, fmt.Errorf("boundary record has no name")
	}

	neighbourhood := &models.Neighbourhood{
		Name:       name,
		LabelPoint: sources.GeoPoint(record, "geo_point_2d"),
	}

	if geometry := extractGeometry(record); geometry != nil {
		closePolygonRings(geometry)
		encoded, err := json.Marshal(geometry)
		if err != nil {
			return nil, fmt.Errorf("failed to encode boundary for %q: %w", name, err)
		}
		neighbourhood.Boundary = encoded
	}

	return neighbourhood, nil
}

// extractGeometry unwraps the geom field, which arrives either as a bare
// GeoJSON geometry or wrapped in a Feature-style envelope.
func extractGeometry(record map[string]any) map[string]any {
	geom := jsonutil.MapField(record, "geom")
	if geom == nil {
		return nil
	}
	if inner := jsonutil.MapField(geom, "geometry"); inner != nil {
		return inner
	}
	if jsonutil.StringField(geom, "type") != "" {
		return geom
	}
	return nil
}

// closePolygonRings appends the first vertex to any ring that does not end
// where it starts. Some feeds ship open rings, which strict GeoJSON
// consumers reject.
func closePolygonRings(geometry map[string]any) {
	coords, ok := geometry["coordinates"].([]any)
	if !ok {
		return
	}
	switch jsonutil.StringField(geometry, "type") {
	case "Polygon":
		geometry["coordinates"] = closeRings(coords)
	case "MultiPolygon":
		for i, polygon := range coords {
			if rings, ok := polygon.([]any); ok {
				coords[i] = closeRings(rings)
			}
		}
	}
}

func closeRings(rings []any) []any {
	for i, ring := range rings {
		vertices, ok := ring.([]any)
		if !ok || len(vertices) < 3 {
			continue
		}
		first, firstOK := vertices[0].([]any)
		last, lastOK := vertices[len(vertices)-1].([]any)
		if !firstOK || !lastOK {
			continue
		}
		if !vertexEqual(first, last) {
			rings[i] = append(vertices, first)
		}
	}
	return rings
}

func vertexEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		av, aok := a[i].(float64)
		bv, bok := b[i].(float64)
		if !aok || !bok || av != bv {
			return false
		}
	}
	return true
}
