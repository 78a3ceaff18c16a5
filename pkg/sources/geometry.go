package sources

import (
	"github.com/civilnews/civic-engine/pkg/jsonutil"
	"github.com/civilnews/civic-engine/pkg/models"
)

// GeoPoint reads a nested geo_point_2d style object from a record field.
func GeoPoint(raw map[string]any, field string) *models.Point {
	return pointFromGeoPoint(jsonutil.MapField(raw, field))
}

// pointFromGeoPoint builds a point from the API's nested geo_point_2d
// object {"lon": ..., "lat": ...}. Returns nil when the object or either
// coordinate is missing or non-numeric.
func pointFromGeoPoint(geoPoint map[string]any) *models.Point {
	if geoPoint == nil {
		return nil
	}
	lon, ok := jsonutil.FloatField(geoPoint, "lon")
	if !ok {
		return nil
	}
	lat, ok := jsonutil.FloatField(geoPoint, "lat")
	if !ok {
		return nil
	}
	return models.NewPoint(lon, lat)
}

// pointFromLatLon builds a point from separate latitude and longitude
// fields. The API reports lat then lon; storage order is [lon, lat].
func pointFromLatLon(raw map[string]any) *models.Point {
	lat, ok := jsonutil.FloatField(raw, "latitude")
	if !ok {
		return nil
	}
	lon, ok := jsonutil.FloatField(raw, "longitude")
	if !ok {
		return nil
	}
	return models.NewPoint(lon, lat)
}
