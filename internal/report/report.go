// Package report exports an aggregation result as an Excel workbook.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

const (
	ForecastSheet = "Forecast"
	RouteSheet    = "Route"

	dateLayout = "2006-01-02"
)

var (
	forecastHeaders = []interface{}{"City", "Date", "Temperature (°C)", "Wind Speed (km/h)", "Precipitation Probability (%)"}
	routeHeaders    = []interface{}{"City", "Latitude", "Longitude"}
)

// Build renders r as an xlsx workbook with one row per city and day on the
// Forecast sheet and one row per resolved stop on the Route sheet.
func Build(r weather.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       "Itinerary weather forecast",
		Creator:     "itinerary-weather",
		Description: fmt.Sprintf("Forecast for %d cities, %d days", len(r.PerCity), r.Itinerary.WindowDays),
		Created:     r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := f.SetSheetName("Sheet1", ForecastSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeForecast(f, r.PerCity); err != nil {
		return nil, fmt.Errorf("failed to create forecast sheet: %w", err)
	}

	if _, err := f.NewSheet(RouteSheet); err != nil {
		return nil, fmt.Errorf("failed to add route sheet: %w", err)
	}
	if err := writeRoute(f, r.Route); err != nil {
		return nil, fmt.Errorf("failed to create route sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeForecast(f *excelize.File, perCity []weather.CityDataset) error {
	if err := f.SetSheetRow(ForecastSheet, "A1", &forecastHeaders); err != nil {
		return err
	}

	row := 2
	for _, ds := range perCity {
		for _, rec := range ds.Series {
			values := []interface{}{
				ds.City,
				rec.Date.Format(dateLayout),
				rec.MaxTemperature,
				rec.WindSpeed,
				rec.PrecipitationProbability,
			}
			start, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(ForecastSheet, start, &values); err != nil {
				return err
			}
			row++
		}
	}

	return setWidths(f, ForecastSheet, []colWidth{{"A", "A", 20}, {"B", "B", 12}, {"C", "E", 28}})
}

func writeRoute(f *excelize.File, route weather.RouteDataset) error {
	if err := f.SetSheetRow(RouteSheet, "A1", &routeHeaders); err != nil {
		return err
	}

	for i, p := range route.Points {
		label := ""
		if i < len(route.Labels) {
			label = route.Labels[i]
		}
		values := []interface{}{label, p.Lat, p.Lon}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(RouteSheet, start, &values); err != nil {
			return err
		}
	}

	return setWidths(f, RouteSheet, []colWidth{{"A", "A", 20}, {"B", "C", 14}})
}

type colWidth struct {
	from, to string
	width    float64
}

func setWidths(f *excelize.File, sheet string, widths []colWidth) error {
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("set width of %s:%s: %w", w.from, w.to, err)
		}
	}
	return nil
}
