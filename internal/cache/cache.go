package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/metrics"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

// Backend is a string key/value store with expiry.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Resolver caches successful location and coordinate lookups. Failed lookups
// are never cached. A failing backend is logged and bypassed.
type Resolver struct {
	prefix   string
	resolver weather.LocationResolver
	coords   weather.CoordinateResolver
	backend  Backend
	ttl      time.Duration
	log      logger.Logger
}

// NewResolver wraps resolver and coords with a cache. Keys are namespaced by
// provider, since location refs of one provider mean nothing to another.
// coords may be nil.
func NewResolver(provider string, resolver weather.LocationResolver, coords weather.CoordinateResolver, backend Backend, ttl time.Duration, log logger.Logger) *Resolver {
	return &Resolver{
		prefix:   "itinerary-weather:" + normalize(provider) + ":",
		resolver: resolver,
		coords:   coords,
		backend:  backend,
		ttl:      ttl,
		log:      log.WithField("component", "location_cache"),
	}
}

func (r *Resolver) refKey(city string) string {
	return r.prefix + "ref:" + normalize(city)
}

func (r *Resolver) coordsKey(city string) string {
	return r.prefix + "coords:" + normalize(city)
}

func normalize(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}

func (r *Resolver) Resolve(ctx context.Context, city string) (weather.LocationRef, error) {
	key := r.refKey(city)
	if v, ok := r.lookup(ctx, key); ok {
		return weather.LocationRef(v), nil
	}

	ref, err := r.resolver.Resolve(ctx, city)
	if err != nil {
		return "", err
	}
	r.store(ctx, key, string(ref))
	return ref, nil
}

func (r *Resolver) Coordinates(ctx context.Context, city string) (weather.Coordinates, error) {
	if r.coords == nil {
		return weather.Coordinates{}, fmt.Errorf("%w: no coordinate source", weather.ErrLocationNotFound)
	}

	key := r.coordsKey(city)
	if v, ok := r.lookup(ctx, key); ok {
		if c, err := decodeCoords(v); err == nil {
			return c, nil
		}
		r.log.Warnf("dropping malformed cache entry %s=%q", key, v)
	}

	c, err := r.coords.Coordinates(ctx, city)
	if err != nil {
		return weather.Coordinates{}, err
	}
	r.store(ctx, key, encodeCoords(c))
	return c, nil
}

func (r *Resolver) lookup(ctx context.Context, key string) (string, bool) {
	v, ok, err := r.backend.Get(ctx, key)
	if err != nil {
		r.log.Warnf("cache get %s: %v", key, err)
		metrics.ObserveCache(false)
		return "", false
	}
	metrics.ObserveCache(ok)
	return v, ok
}

func (r *Resolver) store(ctx context.Context, key, value string) {
	if err := r.backend.Set(ctx, key, value, r.ttl); err != nil {
		r.log.Warnf("cache set %s: %v", key, err)
	}
}

func encodeCoords(c weather.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func decodeCoords(s string) (weather.Coordinates, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return weather.Coordinates{}, fmt.Errorf("malformed coordinates %q", s)
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return weather.Coordinates{}, err
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return weather.Coordinates{}, err
	}
	return weather.Coordinates{Lat: la, Lon: lo}, nil
}
