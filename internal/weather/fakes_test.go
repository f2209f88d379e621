package weather

import (
	"context"
	"fmt"
	"time"
)

// fakeProvider serves canned data keyed by city name. ref = "ref-<city>".
type fakeProvider struct {
	series      map[string]ForecastSeries
	coords      map[string]Coordinates
	resolveErr  map[string]error
	fetchErr    map[string]error
	delay       map[string]time.Duration
	defaultWait time.Duration
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		series:     map[string]ForecastSeries{},
		coords:     map[string]Coordinates{},
		resolveErr: map[string]error{},
		fetchErr:   map[string]error{},
		delay:      map[string]time.Duration{},
	}
}

func (f *fakeProvider) add(city string, days int, c *Coordinates) {
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	s := make(ForecastSeries, 0, days)
	for i := 0; i < days; i++ {
		s = append(s, ForecastRecord{
			Date:                     base.AddDate(0, 0, i),
			MaxTemperature:           float64(10 + i),
			WindSpeed:                float64(5 + i),
			PrecipitationProbability: float64(10 * i),
		})
	}
	f.series[city] = s
	if c != nil {
		f.coords[city] = *c
	}
}

func (f *fakeProvider) wait(ctx context.Context, city string) error {
	d := f.defaultWait
	if v, ok := f.delay[city]; ok {
		d = v
	}
	if d == 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Resolve(ctx context.Context, city string) (LocationRef, error) {
	if err := f.wait(ctx, city); err != nil {
		return "", err
	}
	if err := f.resolveErr[city]; err != nil {
		return "", err
	}
	if _, ok := f.series[city]; !ok {
		return "", ErrLocationNotFound
	}
	return LocationRef("ref-" + city), nil
}

func (f *fakeProvider) Coordinates(ctx context.Context, city string) (Coordinates, error) {
	c, ok := f.coords[city]
	if !ok {
		return Coordinates{}, ErrLocationNotFound
	}
	return c, nil
}

func (f *fakeProvider) Fetch(ctx context.Context, ref LocationRef, days int) (ForecastSeries, error) {
	city := string(ref)[len("ref-"):]
	if err := f.fetchErr[city]; err != nil {
		return nil, err
	}
	s, ok := f.series[city]
	if !ok {
		return nil, fmt.Errorf("unknown ref %s", ref)
	}
	return s.Head(days), nil
}
