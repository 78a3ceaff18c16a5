package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Neighbourhood is a named area within a city. Rows are created once by
// the boundary seeding script; the pipeline only reads them to resolve
// free-text area names to identifiers.
type Neighbourhood struct {
	ID        uuid.UUID       `json:"id"`
	CityID    *uuid.UUID      `json:"city_id,omitempty"`
	Name      string          `json:"name"`
	Boundary  json.RawMessage `json:"boundary,omitempty"`    // GeoJSON Polygon
	LabelPoint *Point         `json:"label_point,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// City groups neighbourhoods under one open-data catalogue.
type City struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	APIURL string    `json:"api_url,omitempty"`
}
