package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

func sampleResult() weather.Result {
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	series := func(temp float64) weather.ForecastSeries {
		return weather.ForecastSeries{
			{Date: day, MaxTemperature: temp, WindSpeed: 10, PrecipitationProbability: 20},
			{Date: day.AddDate(0, 0, 1), MaxTemperature: temp + 1, WindSpeed: 11, PrecipitationProbability: 30},
		}
	}
	return weather.Result{
		Seq:       4,
		Itinerary: itinerary.Itinerary{StartCity: "Paris", EndCity: "Berlin", IntermediateCities: []string{}, WindowDays: 3},
		PerCity: []weather.CityDataset{
			{ID: "a", City: "Paris", Series: series(15)},
			{ID: "b", City: "Berlin", Series: series(9)},
		},
		Route: weather.RouteDataset{
			Points: []weather.Coordinates{{Lat: 48.85, Lon: 2.35}, {Lat: 52.52, Lon: 13.4}},
			Labels: []string{"Paris", "Berlin"},
			Zoom:   5,
		},
		CreatedAt: day,
	}
}

func TestBuildWorkbook(t *testing.T) {
	data, err := Build(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ForecastSheet, RouteSheet}, f.GetSheetList())

	rows, err := f.GetRows(ForecastSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "City", rows[0][0])
	assert.Equal(t, []string{"Paris", "2026-10-19", "15", "10", "20"}, rows[1])
	assert.Equal(t, []string{"Berlin", "2026-10-20", "10", "11", "30"}, rows[4])

	rows, err = f.GetRows(RouteSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Berlin", "52.52", "13.4"}, rows[2])
}

func TestBuildEmptyRoute(t *testing.T) {
	r := sampleResult()
	r.Route = weather.RouteDataset{}

	data, err := Build(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RouteSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSetWidthsReportsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	assert.NoError(t, setWidths(f, "Sheet1", []colWidth{{"A", "B", 20}}))
	assert.Error(t, setWidths(f, "Sheet1", []colWidth{{"A", "A", 300}}))
	assert.Error(t, setWidths(f, "Missing", []colWidth{{"A", "A", 20}}))
}
