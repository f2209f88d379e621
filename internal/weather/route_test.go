package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRouteSkipsMissing(t *testing.T) {
	route := BuildRoute(
		[]string{"A", "B", "C"},
		[]*Coordinates{{Lat: 10, Lon: 20}, nil, {Lat: 30, Lon: 40}},
	)

	assert.Equal(t, []string{"A", "C"}, route.Labels)
	assert.Equal(t, []Coordinates{{Lat: 10, Lon: 20}, {Lat: 30, Lon: 40}}, route.Points)
	require.NotNil(t, route.Center)
	assert.Equal(t, Coordinates{Lat: 20, Lon: 30}, *route.Center)
	assert.Equal(t, DefaultRouteZoom, route.Zoom)
}

func TestBuildRouteEmpty(t *testing.T) {
	route := BuildRoute(nil, nil)
	assert.Empty(t, route.Points)
	assert.Nil(t, route.Center)
}

func TestSeriesHead(t *testing.T) {
	s := make(ForecastSeries, 5)
	for i := range s {
		s[i].Date = time.Date(2026, 1, i+1, 0, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, s[:3], s.Head(3))
	assert.Equal(t, s, s.Head(10))
	assert.Empty(t, s.Head(-1))
}
