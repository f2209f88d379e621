package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/metrics"
)

// ErrSuperseded is returned when a newer submission was issued while this one
// was still being aggregated. The stale result is discarded.
var ErrSuperseded = errors.New("superseded by a newer submission")

// Service runs aggregations and installs their results in the store.
type Service struct {
	store      Store
	aggregator *Aggregator
	timeout    time.Duration
	log        logger.Logger
}

// NewService creates a new Service. A zero timeout leaves the caller's
// context deadline in charge.
func NewService(store Store, aggregator *Aggregator, timeout time.Duration, log logger.Logger) *Service {
	return &Service{
		store:      store,
		aggregator: aggregator,
		timeout:    timeout,
		log:        log.WithField("component", "weather_service"),
	}
}

// Submit aggregates it and installs the result. Only the most recently issued
// submission may install; an older one that finishes later gets ErrSuperseded.
func (s *Service) Submit(ctx context.Context, it itinerary.Itinerary) (Result, error) {
	if err := it.Validate(); err != nil {
		return Result{}, err
	}

	seq := s.store.Next()
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.aggregator.Aggregate(ctx, it)
	cities := len(it.Cities())
	if err != nil {
		outcome := metrics.OutcomeRejected
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			outcome = metrics.OutcomeCancelled
			err = &AggregationError{
				Kind: KindUpstreamUnreachable,
				City: it.StartCity,
				Err:  fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err),
			}
		}
		metrics.ObserveAggregation(outcome, cities, time.Since(start))
		return Result{}, err
	}

	res.Seq = seq
	if !s.store.Install(res) {
		s.log.Infof("discarding result #%d: a newer submission is in flight", seq)
		metrics.ObserveAggregation(metrics.OutcomeSuperseded, cities, time.Since(start))
		return Result{}, ErrSuperseded
	}

	s.log.Infof("installed result #%d with %d cities", seq, cities)
	metrics.ObserveAggregation(metrics.OutcomeInstalled, cities, time.Since(start))
	return res, nil
}

// Current returns the installed result.
func (s *Service) Current() (Result, bool) {
	return s.store.Current()
}
