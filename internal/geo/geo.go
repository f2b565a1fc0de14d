// Package geo decides whether a vendor is close enough to a customer for express delivery.
package geo

import (
	"math"

	"marketplace-delivery/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// DefaultMaxKm is the express delivery radius.
const DefaultMaxKm = 10.0

// DistanceKm returns the great-circle distance between a and b (haversine).
// Invalid coordinates yield NaN.
func DistanceKm(a, b domain.Coordinate) float64 {
	if !a.Valid() || !b.Valid() {
		return math.NaN()
	}
	lat1, lon1 := a.LatLon()
	lat2, lon2 := b.LatLon()

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// округление может дать h чуть больше 1
	h = math.Min(1, h)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// IsNearby reports whether the vendor is within maxKm of the customer, boundary inclusive.
// A non-positive maxKm falls back to DefaultMaxKm. Invalid coordinates are never nearby.
func IsNearby(vendor, customer domain.Coordinate, maxKm float64) bool {
	if maxKm <= 0 || math.IsNaN(maxKm) {
		maxKm = DefaultMaxKm
	}
	d := DistanceKm(vendor, customer)
	if math.IsNaN(d) {
		return false
	}
	return d <= maxKm
}

// AllNearby reports whether every vendor is independently within range.
// An empty vendor list is not eligible.
func AllNearby(vendors []domain.Coordinate, customer domain.Coordinate, maxKm float64) bool {
	if len(vendors) == 0 {
		return false
	}
	for _, v := range vendors {
		if !IsNearby(v, customer, maxKm) {
			return false
		}
	}
	return true
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
