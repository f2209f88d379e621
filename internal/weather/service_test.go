package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/store"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

// gatedProvider blocks resolution of a city until its gate is closed.
type gatedProvider struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	fail    map[string]bool
	entered chan string
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{
		gates:   map[string]chan struct{}{},
		fail:    map[string]bool{},
		entered: make(chan string, 64),
	}
}

func (g *gatedProvider) gate(city string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[city]
	if !ok {
		ch = make(chan struct{})
		close(ch)
		g.gates[city] = ch
	}
	return ch
}

func (g *gatedProvider) hold(city string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[city] = ch
	return ch
}

func (g *gatedProvider) Resolve(ctx context.Context, city string) (weather.LocationRef, error) {
	select {
	case g.entered <- city:
	default:
	}
	select {
	case <-g.gate(city):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if g.fail[city] {
		return "", weather.ErrLocationNotFound
	}
	return weather.LocationRef(city), nil
}

func (g *gatedProvider) Fetch(ctx context.Context, ref weather.LocationRef, days int) (weather.ForecastSeries, error) {
	return weather.ForecastSeries{{Date: time.Now(), MaxTemperature: 20}}, nil
}

func newService(p *gatedProvider, timeout time.Duration) *weather.Service {
	agg := weather.NewAggregator(p, nil, p, logger.Nop())
	return weather.NewService(store.NewMemoryStore(), agg, timeout, logger.Nop())
}

func trip(start, end string) itinerary.Itinerary {
	return itinerary.Itinerary{StartCity: start, EndCity: end, WindowDays: 3}
}

func TestSubmitInstalls(t *testing.T) {
	svc := newService(newGatedProvider(), 0)

	res, err := svc.Submit(context.Background(), trip("Paris", "Berlin"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Seq)

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, res.Seq, cur.Seq)
	assert.Len(t, cur.PerCity, 2)
}

func TestSubmitRejectsInvalidItinerary(t *testing.T) {
	svc := newService(newGatedProvider(), 0)

	_, err := svc.Submit(context.Background(), itinerary.Itinerary{StartCity: "Paris", WindowDays: 3})
	assert.ErrorIs(t, err, itinerary.ErrInvalid)
}

func TestSlowEarlierSubmissionIsDiscarded(t *testing.T) {
	p := newGatedProvider()
	release := p.hold("Slowtown")
	svc := newService(p, 0)

	slowErr := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), trip("Slowtown", "Berlin"))
		slowErr <- err
	}()

	// Once Slowtown is being resolved the slow submission holds its sequence number.
	for city := range p.entered {
		if city == "Slowtown" {
			break
		}
	}

	_, err := svc.Submit(context.Background(), trip("Paris", "Madrid"))
	require.NoError(t, err)

	close(release)
	assert.ErrorIs(t, <-slowErr, weather.ErrSuperseded)

	cur, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, "Paris", cur.PerCity[0].City)
}

func TestFailedSubmissionKeepsPreviousResult(t *testing.T) {
	p := newGatedProvider()
	svc := newService(p, 0)

	first, err := svc.Submit(context.Background(), trip("Paris", "Berlin"))
	require.NoError(t, err)

	p.fail["Atlantis"] = true
	_, err = svc.Submit(context.Background(), trip("Atlantis", "Berlin"))
	var aerr *weather.AggregationError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "Atlantis", aerr.City)

	cur, _ := svc.Current()
	assert.Equal(t, first.Seq, cur.Seq)
}

func TestSubmitTimeout(t *testing.T) {
	p := newGatedProvider()
	p.hold("Paris")
	svc := newService(p, 20*time.Millisecond)

	_, err := svc.Submit(context.Background(), trip("Paris", "Berlin"))

	var aerr *weather.AggregationError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, weather.KindUpstreamUnreachable, aerr.Kind)
	assert.ErrorIs(t, err, weather.ErrUpstreamUnreachable)
}
