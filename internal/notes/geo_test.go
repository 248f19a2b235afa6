package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteDistanceMeters(t *testing.T) {
	madrid := &GeoPoint{Lon: -3.7038, Lat: 40.4168}
	barcelona := &GeoPoint{Lon: 2.1734, Lat: 41.3851}

	origins := []PickupOrigin{
		{Name: "Madrid", Location: madrid},
		{Name: "No GPS"},
		{Name: "Barcelona", Location: barcelona},
	}

	d := RouteDistanceMeters(origins)
	// Madrid to Barcelona is roughly 505 km great-circle.
	assert.InDelta(t, 505_000, d, 10_000)
}

func TestRouteDistanceNeedsTwoLocatedStops(t *testing.T) {
	assert.Zero(t, RouteDistanceMeters(nil))
	assert.Zero(t, RouteDistanceMeters([]PickupOrigin{{Name: "only"}}))
	assert.Zero(t, RouteDistanceMeters([]PickupOrigin{
		{Name: "located", Location: &GeoPoint{Lon: 0, Lat: 0}},
		{Name: "not located"},
	}))
}
