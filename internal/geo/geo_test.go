package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace-delivery/internal/domain"
	"marketplace-delivery/internal/geo"
)

// kmPerDegreeLat is the length of one degree of latitude on the haversine sphere.
const kmPerDegreeLat = geo.EarthRadiusKm * math.Pi / 180

func TestDistanceKm_KnownPairs(t *testing.T) {
	t.Parallel()

	mumbai := domain.NewCoordinate(19.07, 72.87)
	delhi := domain.NewCoordinate(28.70, 77.10)

	d := geo.DistanceKm(mumbai, delhi)
	require.InDelta(t, 1150, d, 15)
	require.InDelta(t, d, geo.DistanceKm(delhi, mumbai), 1e-9, "distance must be symmetric")
	require.Zero(t, geo.DistanceKm(mumbai, mumbai))
}

func TestDistanceKm_InvalidIsNaN(t *testing.T) {
	t.Parallel()

	require.True(t, math.IsNaN(geo.DistanceKm(domain.Coordinate{}, domain.NewCoordinate(1, 1))))
}

func TestIsNearby_BoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	customer := domain.NewCoordinate(0, 0)
	// along a meridian the haversine distance is exactly R*dLat
	exactly10 := domain.NewCoordinate(10/kmPerDegreeLat, 0)
	require.InDelta(t, 10.0, geo.DistanceKm(exactly10, customer), 1e-9)

	// a vendor sitting exactly on the radius is nearby
	d := geo.DistanceKm(exactly10, customer)
	require.True(t, geo.IsNearby(exactly10, customer, d))
	require.False(t, geo.IsNearby(exactly10, customer, d-1e-9))

	beyond := domain.NewCoordinate(10.001/kmPerDegreeLat, 0)
	require.False(t, geo.IsNearby(beyond, customer, 10))
}

func TestIsNearby_Grid(t *testing.T) {
	t.Parallel()

	customer := domain.NewCoordinate(19.07, 72.87)
	for _, km := range []float64{0, 0.5, 1, 5, 9.99} {
		v := domain.NewCoordinate(19.07+km/kmPerDegreeLat, 72.87)
		require.Truef(t, geo.IsNearby(v, customer, 10), "%.2f km must be nearby", km)
	}
	for _, km := range []float64{10.01, 11, 50, 1000} {
		v := domain.NewCoordinate(19.07+km/kmPerDegreeLat, 72.87)
		require.Falsef(t, geo.IsNearby(v, customer, 10), "%.2f km must not be nearby", km)
	}
}

func TestIsNearby_FailsClosed(t *testing.T) {
	t.Parallel()

	ok := domain.NewCoordinate(19.07, 72.87)
	nan := math.NaN()

	tests := []struct {
		name             string
		vendor, customer domain.Coordinate
	}{
		{"vendor missing", domain.Coordinate{}, ok},
		{"customer missing", ok, domain.Coordinate{}},
		{"vendor nan", domain.Coordinate{Latitude: &nan, Longitude: &nan}, ok},
		{"customer half", ok, domain.Coordinate{Latitude: ok.Latitude}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, geo.IsNearby(tt.vendor, tt.customer, 10))
			})
		})
	}
}

func TestIsNearby_DefaultRadius(t *testing.T) {
	t.Parallel()

	customer := domain.NewCoordinate(0, 0)
	v := domain.NewCoordinate(9/kmPerDegreeLat, 0)
	require.True(t, geo.IsNearby(v, customer, 0))
	require.False(t, geo.IsNearby(domain.NewCoordinate(11/kmPerDegreeLat, 0), customer, -1))
}

func TestAllNearby_OneOutOfRangeDisqualifies(t *testing.T) {
	t.Parallel()

	customer := domain.NewCoordinate(19.08, 72.88)
	vendorA := domain.NewCoordinate(19.07, 72.87)
	vendorB := domain.NewCoordinate(28.70, 77.10)

	require.True(t, geo.AllNearby([]domain.Coordinate{vendorA}, customer, 10))
	require.False(t, geo.AllNearby([]domain.Coordinate{vendorA, vendorB}, customer, 10))
	require.False(t, geo.AllNearby(nil, customer, 10))
}
