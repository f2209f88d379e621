package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It needs no
// API key; location refs are "lat,lon" strings.
type OpenMeteoProvider struct {
	name        string
	geocodeURL  string
	forecastURL string
	httpCfg     HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client, backoff BackoffConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:        "openmeteo",
		geocodeURL:  "https://geocoding-api.open-meteo.com/v1/search",
		forecastURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg:     HTTPClientConfig{Client: client, Backoff: backoff},
		circuit:     newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// Resolve geocodes city and encodes its position as the location ref.
func (p *OpenMeteoProvider) Resolve(ctx context.Context, city string) (weather.LocationRef, error) {
	c, err := p.Coordinates(ctx, city)
	if err != nil {
		return "", err
	}
	return weather.LocationRef(fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)), nil
}

// Coordinates returns the position of the best geocoding match for city.
func (p *OpenMeteoProvider) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	values := url.Values{}
	values.Set("name", city)
	values.Set("count", "1")
	values.Set("format", "json")

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := p.getJSON(ctx, p.geocodeURL, values, &payload); err != nil {
		return weather.Coordinates{}, err
	}
	if len(payload.Results) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	}
	return weather.Coordinates{Lat: payload.Results[0].Latitude, Lon: payload.Results[0].Longitude}, nil
}

// Fetch reads the daily forecast for the position encoded in ref.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, ref weather.LocationRef, days int) (weather.ForecastSeries, error) {
	c, err := parseLatLon(string(ref))
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("days must be greater than zero")
	}

	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", c.Lat))
	values.Set("longitude", fmt.Sprintf("%f", c.Lon))
	values.Set("daily", "temperature_2m_max,wind_speed_10m_max,precipitation_probability_max")
	values.Set("forecast_days", strconv.Itoa(days))
	values.Set("timezone", "auto")

	var payload struct {
		Daily struct {
			Time          []string   `json:"time"`
			TemperatureMx []*float64 `json:"temperature_2m_max"`
			WindSpeedMx   []*float64 `json:"wind_speed_10m_max"`
			PrecipProbMx  []*float64 `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := p.getJSON(ctx, p.forecastURL, values, &payload); err != nil {
		return nil, err
	}

	d := payload.Daily
	series := make(weather.ForecastSeries, 0, len(d.Time))
	for i, day := range d.Time {
		ts, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("openmeteo: bad forecast date %q: %w", day, err)
		}
		series = append(series, weather.ForecastRecord{
			Date:                     ts,
			MaxTemperature:           valueAt(d.TemperatureMx, i),
			WindSpeed:                valueAt(d.WindSpeedMx, i),
			PrecipitationProbability: valueAt(d.PrecipProbMx, i),
		})
	}
	return series.Head(days), nil
}

func (p *OpenMeteoProvider) getJSON(ctx context.Context, baseURL string, values url.Values, out interface{}) error {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", baseURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return fmt.Errorf("%w: %v", weather.ErrLocationNotFound, err)
		}
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// valueAt returns vals[i], or 0 when it is missing or null.
func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func parseLatLon(s string) (weather.Coordinates, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return weather.Coordinates{}, fmt.Errorf("invalid location ref %q", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	return weather.Coordinates{Lat: la, Lon: lo}, nil
}
