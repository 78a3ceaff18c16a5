package models

import (
	"encoding/json"
	"fmt"
)

// Point is a WGS84 point serialized as a GeoJSON Point. Coordinate order
// is [longitude, latitude] on the wire and in storage; a round-trip must
// reproduce the same two float64 values exactly.
type Point struct {
	Lon float64
	Lat float64
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// NewPoint builds a Point from longitude and latitude.
func NewPoint(lon, lat float64) *Point {
	return &Point{Lon: lon, Lat: lat}
}

// MarshalJSON encodes the point as {"type":"Point","coordinates":[lon,lat]}.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(geoJSONPoint{
		Type:        "Point",
		Coordinates: []float64{p.Lon, p.Lat},
	})
}

// UnmarshalJSON decodes a GeoJSON Point, rejecting any other geometry type.
func (p *Point) UnmarshalJSON(data []byte) error {
	var g geoJSONPoint
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("failed to decode GeoJSON point: %w", err)
	}
	if g.Type != "Point" {
		return fmt.Errorf("unexpected geometry type %q", g.Type)
	}
	if len(g.Coordinates) != 2 {
		return fmt.Errorf("expected 2 coordinates, got %d", len(g.Coordinates))
	}
	p.Lon = g.Coordinates[0]
	p.Lat = g.Coordinates[1]
	return nil
}
