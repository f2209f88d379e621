package weather

import (
	"context"
	"errors"
)

var (
	// ErrLocationNotFound is returned by resolvers when a name has no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUpstreamUnreachable marks transport-level failures talking to a provider.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// LocationResolver maps a free-text city name to a provider location.
type LocationResolver interface {
	Resolve(ctx context.Context, city string) (LocationRef, error)
}

// CoordinateResolver looks up the position of a city.
type CoordinateResolver interface {
	Coordinates(ctx context.Context, city string) (Coordinates, error)
}

// ForecastFetcher retrieves the daily forecast of a resolved location.
// Implementations return at most days records and may return fewer.
type ForecastFetcher interface {
	Fetch(ctx context.Context, ref LocationRef, days int) (ForecastSeries, error)
}

// Provider is a weather data source covering all three lookups.
type Provider interface {
	Name() string
	LocationResolver
	CoordinateResolver
	ForecastFetcher
}

// Store is the contract the result store must satisfy.
type Store interface {
	// Next issues a new submission sequence number.
	Next() uint64
	// Install stores r if r.Seq is the latest issued number and reports
	// whether it did.
	Install(r Result) bool
	// Current returns the installed result, if any.
	Current() (Result, bool)
}
