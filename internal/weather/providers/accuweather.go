package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

// AccuWeatherProvider implements weather.Provider on top of the AccuWeather
// locations and daily forecast APIs.
type AccuWeatherProvider struct {
	name     string
	apiKey   string
	language string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

func NewAccuWeatherProvider(client *http.Client, apiKey, language string, backoff BackoffConfig) *AccuWeatherProvider {
	return &AccuWeatherProvider{
		name:     "accuweather",
		apiKey:   apiKey,
		language: language,
		baseURL:  "http://dataservice.accuweather.com",
		httpCfg:  HTTPClientConfig{Client: client, Backoff: backoff},
		circuit:  newCircuitBreaker("accuweather"),
	}
}

func (p *AccuWeatherProvider) Name() string {
	return p.name
}

type accuLocation struct {
	Key           string `json:"Key"`
	LocalizedName string `json:"LocalizedName"`
	GeoPosition   struct {
		Latitude  float64 `json:"Latitude"`
		Longitude float64 `json:"Longitude"`
	} `json:"GeoPosition"`
}

// Resolve returns the AccuWeather location key of the best match for city.
func (p *AccuWeatherProvider) Resolve(ctx context.Context, city string) (weather.LocationRef, error) {
	values := url.Values{}
	values.Set("q", city)
	if p.language != "" {
		values.Set("language", p.language)
	}

	var matches []accuLocation
	if err := p.getJSON(ctx, "/locations/v1/cities/search", values, &matches); err != nil {
		return "", err
	}
	if len(matches) == 0 || matches[0].Key == "" {
		return "", fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	}
	return weather.LocationRef(matches[0].Key), nil
}

// Coordinates resolves city and then reads the position of its location key.
func (p *AccuWeatherProvider) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	ref, err := p.Resolve(ctx, city)
	if err != nil {
		return weather.Coordinates{}, err
	}

	var loc accuLocation
	if err := p.getJSON(ctx, "/locations/v1/"+url.PathEscape(string(ref)), url.Values{}, &loc); err != nil {
		return weather.Coordinates{}, err
	}
	if loc.GeoPosition.Latitude == 0 && loc.GeoPosition.Longitude == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: no position for %s", weather.ErrLocationNotFound, city)
	}
	return weather.Coordinates{Lat: loc.GeoPosition.Latitude, Lon: loc.GeoPosition.Longitude}, nil
}

// Fetch reads the 5-day daily forecast and keeps the first days entries.
func (p *AccuWeatherProvider) Fetch(ctx context.Context, ref weather.LocationRef, days int) (weather.ForecastSeries, error) {
	values := url.Values{}
	values.Set("metric", "true")
	values.Set("details", "true")

	var payload struct {
		DailyForecasts []struct {
			Date        string `json:"Date"`
			Temperature struct {
				Maximum struct {
					Value float64 `json:"Value"`
				} `json:"Maximum"`
			} `json:"Temperature"`
			Day struct {
				PrecipitationProbability float64 `json:"PrecipitationProbability"`
				Wind                     struct {
					Speed struct {
						Value float64 `json:"Value"`
					} `json:"Speed"`
				} `json:"Wind"`
			} `json:"Day"`
		} `json:"DailyForecasts"`
	}

	path := "/forecasts/v1/daily/5day/" + url.PathEscape(string(ref))
	if err := p.getJSON(ctx, path, values, &payload); err != nil {
		return nil, err
	}

	series := make(weather.ForecastSeries, 0, len(payload.DailyForecasts))
	for _, d := range payload.DailyForecasts {
		ts, err := time.Parse(time.RFC3339, d.Date)
		if err != nil {
			return nil, fmt.Errorf("accuweather: bad forecast date %q: %w", d.Date, err)
		}
		series = append(series, weather.ForecastRecord{
			Date:                     time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
			MaxTemperature:           d.Temperature.Maximum.Value,
			WindSpeed:                d.Day.Wind.Speed.Value,
			PrecipitationProbability: d.Day.PrecipitationProbability,
		})
	}
	return series.Head(days), nil
}

func (p *AccuWeatherProvider) getJSON(ctx context.Context, path string, values url.Values, out interface{}) error {
	if p.apiKey == "" {
		return fmt.Errorf("accuweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		q := url.Values{}
		for k, v := range values {
			q[k] = v
		}
		q.Set("apikey", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s%s?%s", p.baseURL, path, q.Encode()), nil)
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
