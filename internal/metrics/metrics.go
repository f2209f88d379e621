package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Aggregation outcomes.
const (
	OutcomeInstalled  = "installed"
	OutcomeSuperseded = "superseded"
	OutcomeRejected   = "rejected"
	OutcomeCancelled  = "cancelled"
)

var (
	aggregations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itinerary_weather",
		Name:      "aggregations_total",
		Help:      "Itinerary aggregations by outcome.",
	}, []string{"outcome"})

	aggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "itinerary_weather",
		Name:      "aggregation_duration_seconds",
		Help:      "Time spent resolving and fetching all stops of an itinerary.",
		Buckets:   prometheus.DefBuckets,
	})

	itineraryCities = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "itinerary_weather",
		Name:      "itinerary_cities",
		Help:      "Number of stops per submitted itinerary.",
		Buckets:   []float64{2, 3, 4, 6, 8, 12, 20},
	})

	upstreamRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itinerary_weather",
		Name:      "upstream_requests_total",
		Help:      "Requests sent to weather providers.",
	}, []string{"provider", "result"})

	cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "itinerary_weather",
		Name:      "location_cache_lookups_total",
		Help:      "Location cache lookups by result.",
	}, []string{"result"})

	chatSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "itinerary_weather",
		Name:      "chat_sessions",
		Help:      "Open conversation sessions.",
	})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		aggregations, aggregationDuration, itineraryCities,
		upstreamRequests, cacheLookups, chatSessions,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveAggregation records one aggregation attempt.
func ObserveAggregation(outcome string, cities int, took time.Duration) {
	aggregations.WithLabelValues(outcome).Inc()
	aggregationDuration.Observe(took.Seconds())
	itineraryCities.Observe(float64(cities))
}

// ObserveUpstream records one provider request.
func ObserveUpstream(provider string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	upstreamRequests.WithLabelValues(provider, result).Inc()
}

// ObserveCache records a cache hit or miss.
func ObserveCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

// SetChatSessions reports the number of open conversation sessions.
func SetChatSessions(n int) {
	chatSessions.Set(float64(n))
}
