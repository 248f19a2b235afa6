package notes

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// RouteDistanceMeters sums the haversine distance over the consecutive
// geolocated stops of a pickup route. Stops without a location are skipped;
// fewer than two located stops yield zero.
func RouteDistanceMeters(origins []PickupOrigin) float64 {
	var points []orb.Point
	for _, o := range origins {
		if o.Location != nil {
			points = append(points, orb.Point{o.Location.Lon, o.Location.Lat})
		}
	}
	if len(points) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.Distance(points[i-1], points[i])
	}
	return total
}
