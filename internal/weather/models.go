package weather

import (
	"time"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
)

// LocationRef is the provider's opaque identifier for a resolved city.
type LocationRef string

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ForecastRecord holds one calendar day of metrics for one city.
type ForecastRecord struct {
	Date                     time.Time `json:"date"`
	MaxTemperature           float64   `json:"maxTemperatureC"`
	WindSpeed                float64   `json:"windSpeedKmh"`
	PrecipitationProbability float64   `json:"precipitationProbability"`
}

// ForecastSeries is a city's daily forecast, ordered by Date ascending.
type ForecastSeries []ForecastRecord

// Head returns the first n records, or all of them when the series is shorter.
func (s ForecastSeries) Head(n int) ForecastSeries {
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return s[:n:n]
}

// CityDataset is the forecast of one stop. ID identifies the stop within a
// result; two stops with the same name get different IDs.
type CityDataset struct {
	ID       string         `json:"id"`
	City     string         `json:"city"`
	Location LocationRef    `json:"location"`
	Series   ForecastSeries `json:"series"`
}

// RouteDataset is the ordered list of resolved stop positions.
// Points and Labels are parallel.
type RouteDataset struct {
	Points []Coordinates `json:"points"`
	Labels []string      `json:"labels"`
	Center *Coordinates  `json:"center,omitempty"`
	Zoom   int           `json:"zoom"`
}

// Result is an installed aggregation. Seq is the submission sequence number it
// was produced for.
type Result struct {
	Seq       uint64              `json:"seq"`
	Itinerary itinerary.Itinerary `json:"itinerary"`
	PerCity   []CityDataset       `json:"perCity"`
	Route     RouteDataset        `json:"route"`
	CreatedAt time.Time           `json:"createdAt"`
}
