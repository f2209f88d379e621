// Package view renders per-city forecast charts and keeps each city's
// controls bound to that city's dataset.
package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

// ErrUnknownCity is returned for a dataset ID the board does not hold.
var ErrUnknownCity = errors.New("unknown city")

// Metric selects which forecast column a chart plots.
type Metric string

const (
	Temperature              Metric = "Temperature"
	WindSpeed                Metric = "WindSpeed"
	PrecipitationProbability Metric = "PrecipitationProbability"
)

// Metrics lists the selectable metrics in display order.
var Metrics = []Metric{Temperature, WindSpeed, PrecipitationProbability}

const (
	DefaultMetric = Temperature
	DefaultDays   = 3

	chartTitle = "Weather forecast"
	xAxisTitle = "Date"
)

// Label is the human-readable axis label.
func (m Metric) Label() string {
	switch m {
	case WindSpeed:
		return "Wind Speed (km/h)"
	case PrecipitationProbability:
		return "Precipitation Probability (%)"
	default:
		return "Temperature (°C)"
	}
}

func (m Metric) valid() bool {
	for _, v := range Metrics {
		if m == v {
			return true
		}
	}
	return false
}

func (m Metric) value(r weather.ForecastRecord) float64 {
	switch m {
	case WindSpeed:
		return r.WindSpeed
	case PrecipitationProbability:
		return r.PrecipitationProbability
	default:
		return r.MaxTemperature
	}
}

// ParseMetric accepts the metric name in any case, with or without spaces or
// underscores ("wind speed", "wind_speed", "WindSpeed").
func ParseMetric(s string) (Metric, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range Metrics {
		if strings.ToLower(string(m)) == key {
			return m, nil
		}
	}
	switch key {
	case "temp":
		return Temperature, nil
	case "wind":
		return WindSpeed, nil
	case "precipitation", "precip":
		return PrecipitationProbability, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// State is a city's control values.
type State struct {
	Metric Metric `json:"metric"`
	Days   int    `json:"days"`
}

// DefaultState shows the temperature for the first three days.
func DefaultState() State {
	return State{Metric: DefaultMetric, Days: DefaultDays}
}

// clamp keeps Days within [1, n] and falls back to the default metric.
func (s State) clamp(n int) State {
	if !s.Metric.valid() {
		s.Metric = DefaultMetric
	}
	if s.Days > n {
		s.Days = n
	}
	if s.Days < 1 {
		s.Days = 1
	}
	return s
}

// Point is one plotted day.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Chart is a rendered single-series line chart for one city.
type Chart struct {
	CityID     string  `json:"cityId"`
	City       string  `json:"city"`
	Title      string  `json:"title"`
	XAxisTitle string  `json:"xAxisTitle"`
	YAxisTitle string  `json:"yAxisTitle"`
	Metric     Metric  `json:"metric"`
	Days       int     `json:"days"`
	Points     []Point `json:"points"`
}

// Render plots the first min(state.Days, len(series)) records of the chosen
// metric. Days below 1 is treated as 1.
func Render(ds weather.CityDataset, state State) Chart {
	days := state.Days
	if days < 1 {
		days = 1
	}
	metric := state.Metric
	if !metric.valid() {
		metric = DefaultMetric
	}

	head := ds.Series.Head(days)
	points := make([]Point, 0, len(head))
	for _, r := range head {
		points = append(points, Point{Date: r.Date, Value: metric.value(r)})
	}

	return Chart{
		CityID:     ds.ID,
		City:       ds.City,
		Title:      fmt.Sprintf("%s: %s", chartTitle, ds.City),
		XAxisTitle: xAxisTitle,
		YAxisTitle: metric.Label(),
		Metric:     metric,
		Days:       len(points),
		Points:     points,
	}
}
