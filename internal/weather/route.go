package weather

// DefaultRouteZoom is the initial zoom level of the route map.
const DefaultRouteZoom = 5

// BuildRoute assembles a route from labels and their optional positions.
// Entries without a position are skipped. The center is the mean of the kept
// positions.
func BuildRoute(labels []string, points []*Coordinates) RouteDataset {
	route := RouteDataset{
		Points: []Coordinates{},
		Labels: []string{},
		Zoom:   DefaultRouteZoom,
	}

	var sumLat, sumLon float64
	for i, p := range points {
		if p == nil || i >= len(labels) {
			continue
		}
		route.Points = append(route.Points, *p)
		route.Labels = append(route.Labels, labels[i])
		sumLat += p.Lat
		sumLon += p.Lon
	}

	if n := float64(len(route.Points)); n > 0 {
		route.Center = &Coordinates{Lat: sumLat / n, Lon: sumLon / n}
	}
	return route
}
