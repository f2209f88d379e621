package weather

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an aggregation was rejected.
type ErrorKind string

const (
	KindCityNotFound        ErrorKind = "CITY_NOT_FOUND"
	KindForecastUnavailable ErrorKind = "FORECAST_UNAVAILABLE"
	KindUpstreamUnreachable ErrorKind = "UPSTREAM_UNREACHABLE"
)

// AggregationError rejects a whole aggregation and names the first stop, in
// route order, that could not be served.
type AggregationError struct {
	Kind ErrorKind
	City string
	Err  error
}

func (e *AggregationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.City, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.City)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user.
func (e *AggregationError) Message() string {
	switch e.Kind {
	case KindCityNotFound:
		return fmt.Sprintf("Could not find data for city %s.", e.City)
	case KindForecastUnavailable:
		return fmt.Sprintf("Could not load the forecast for city %s.", e.City)
	default:
		return fmt.Sprintf("The weather service is unavailable right now (while looking up %s). Please try again later.", e.City)
	}
}

// newAggregationError tags err with kind, unless err is a transport failure,
// which is always reported as KindUpstreamUnreachable.
func newAggregationError(kind ErrorKind, city string, err error) *AggregationError {
	if errors.Is(err, ErrUpstreamUnreachable) {
		kind = KindUpstreamUnreachable
	}
	return &AggregationError{Kind: kind, City: city, Err: err}
}

// UserMessage returns the user-facing text for err.
func UserMessage(err error) string {
	var aerr *AggregationError
	if errors.As(err, &aerr) {
		return aerr.Message()
	}
	return "Something went wrong while building the forecast. Please try again."
}
