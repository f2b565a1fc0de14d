package domain

import "math"

// Coordinate is a WGS84 point. A nil component means the value was not supplied.
type Coordinate struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// NewCoordinate builds a fully populated coordinate.
func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Latitude: &lat, Longitude: &lon}
}

// Valid reports whether both components are present, finite and inside WGS84 bounds.
func (c Coordinate) Valid() bool {
	if c.Latitude == nil || c.Longitude == nil {
		return false
	}
	lat, lon := *c.Latitude, *c.Longitude
	if !finite(lat) || !finite(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// LatLon returns the raw components; callers must check Valid first.
func (c Coordinate) LatLon() (float64, float64) {
	var lat, lon float64
	if c.Latitude != nil {
		lat = *c.Latitude
	}
	if c.Longitude != nil {
		lon = *c.Longitude
	}
	return lat, lon
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
