package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

// geocoder keeps its key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder resolves coordinates with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey, lookup: geocoder.Geocoding}
}

// Coordinates geocodes city. The underlying client takes no context, so the
// call is abandoned, not aborted, when ctx is done.
func (g *GoogleGeocoder) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("google geocoder api key is not configured")
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	go func() {
		googleKeyMu.Lock()
		geocoder.ApiKey = g.apiKey
		loc, err := g.lookup(geocoder.Address{City: city})
		googleKeyMu.Unlock()
		done <- result{loc: loc, err: err}
	}()

	select {
	case <-ctx.Done():
		return weather.Coordinates{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationNotFound, r.err)
		}
		return weather.Coordinates{Lat: r.loc.Latitude, Lon: r.loc.Longitude}, nil
	}
}

// ChainCoordinates tries each resolver in turn and returns the first success.
type ChainCoordinates []weather.CoordinateResolver

func (c ChainCoordinates) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	err := fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	for _, r := range c {
		if r == nil {
			continue
		}
		var coords weather.Coordinates
		coords, err = r.Coordinates(ctx, city)
		if err == nil {
			return coords, nil
		}
		if ctx.Err() != nil {
			return weather.Coordinates{}, ctx.Err()
		}
	}
	return weather.Coordinates{}, err
}
