package weather

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
)

// Aggregator resolves and fetches the forecast of every stop of an itinerary.
type Aggregator struct {
	resolver LocationResolver
	coords   CoordinateResolver
	fetcher  ForecastFetcher
	log      logger.Logger

	newID func() string
}

// NewAggregator creates an Aggregator. coords may be nil, in which case the
// route dataset is left empty.
func NewAggregator(resolver LocationResolver, coords CoordinateResolver, fetcher ForecastFetcher, log logger.Logger) *Aggregator {
	return &Aggregator{
		resolver: resolver,
		coords:   coords,
		fetcher:  fetcher,
		log:      log.WithField("component", "aggregator"),
		newID:    uuid.NewString,
	}
}

// Aggregate fetches every stop concurrently. The datasets come back in route
// order. If any stop fails, no dataset is returned and the error names the
// earliest failing stop.
func (a *Aggregator) Aggregate(ctx context.Context, it itinerary.Itinerary) (Result, error) {
	cities := it.Cities()
	a.log.Debugf("aggregating %d cities for %d days", len(cities), it.WindowDays)

	var (
		wg       sync.WaitGroup
		datasets = make([]CityDataset, len(cities))
		errs     = make([]error, len(cities))
	)

	for i, city := range cities {
		wg.Add(1)
		go func(i int, city string) {
			defer wg.Done()
			datasets[i], errs[i] = a.cityDataset(ctx, city, it.WindowDays)
		}(i, city)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	for i, err := range errs {
		if err != nil {
			a.log.Warnf("aggregation rejected at %q: %v", cities[i], err)
			return Result{}, err
		}
	}

	return Result{
		Itinerary: it,
		PerCity:   datasets,
		Route:     a.route(ctx, cities),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (a *Aggregator) cityDataset(ctx context.Context, city string, days int) (CityDataset, error) {
	ref, err := a.resolver.Resolve(ctx, city)
	if err != nil {
		return CityDataset{}, newAggregationError(KindCityNotFound, city, err)
	}
	if ref == "" {
		return CityDataset{}, newAggregationError(KindCityNotFound, city, ErrLocationNotFound)
	}

	series, err := a.fetcher.Fetch(ctx, ref, days)
	if err != nil {
		return CityDataset{}, newAggregationError(KindForecastUnavailable, city, err)
	}
	if len(series) == 0 {
		return CityDataset{}, newAggregationError(KindForecastUnavailable, city, errors.New("empty forecast"))
	}

	series = append(ForecastSeries(nil), series...)
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	return CityDataset{
		ID:       a.newID(),
		City:     city,
		Location: ref,
		Series:   series,
	}, nil
}

// route looks up the position of every stop. Stops that cannot be located are
// left out of the route.
func (a *Aggregator) route(ctx context.Context, cities []string) RouteDataset {
	if a.coords == nil {
		return BuildRoute(nil, nil)
	}

	var wg sync.WaitGroup
	points := make([]*Coordinates, len(cities))

	for i, city := range cities {
		wg.Add(1)
		go func(i int, city string) {
			defer wg.Done()
			c, err := a.coords.Coordinates(ctx, city)
			if err != nil {
				a.log.Debugf("no coordinates for %q: %v", city, err)
				return
			}
			points[i] = &c
		}(i, city)
	}
	wg.Wait()

	return BuildRoute(cities, points)
}
