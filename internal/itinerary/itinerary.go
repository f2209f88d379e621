package itinerary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// WindowOptions are the forecast window lengths a user may pick, in days.
var WindowOptions = []int{1, 3, 5}

// MaxWindowDays is the longest forecast window offered.
const MaxWindowDays = 5

// ErrInvalid is returned when an itinerary is missing a required field.
var ErrInvalid = errors.New("invalid itinerary")

var validate = validator.New()

// Itinerary is an ordered route: start, intermediate stops, end, plus the
// number of forecast days requested for every stop.
type Itinerary struct {
	StartCity          string   `json:"startCity" validate:"required"`
	EndCity            string   `json:"endCity" validate:"required"`
	IntermediateCities []string `json:"intermediateCities" validate:"dive,required"`
	WindowDays         int      `json:"windowDays" validate:"oneof=1 3 5"`
}

// New normalizes the given fields (trimming names, dropping blank stops) and
// validates the result.
func New(start, end string, intermediates []string, windowDays int) (Itinerary, error) {
	it := Itinerary{
		StartCity:          strings.TrimSpace(start),
		EndCity:            strings.TrimSpace(end),
		IntermediateCities: make([]string, 0, len(intermediates)),
		WindowDays:         windowDays,
	}
	for _, c := range intermediates {
		if c = strings.TrimSpace(c); c != "" {
			it.IntermediateCities = append(it.IntermediateCities, c)
		}
	}
	if err := it.Validate(); err != nil {
		return Itinerary{}, err
	}
	return it, nil
}

// Validate checks the required fields and the window length.
func (it Itinerary) Validate() error {
	if err := validate.Struct(it); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed on %q", ErrInvalid, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Cities returns every stop in route order: start, intermediates, end.
func (it Itinerary) Cities() []string {
	out := make([]string, 0, len(it.IntermediateCities)+2)
	out = append(out, it.StartCity)
	out = append(out, it.IntermediateCities...)
	return append(out, it.EndCity)
}

// ParseWindow parses a window selection such as "3".
func ParseWindow(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, IsWindowOption(n)
}

// IsWindowOption reports whether n is one of WindowOptions.
func IsWindowOption(n int) bool {
	for _, o := range WindowOptions {
		if o == n {
			return true
		}
	}
	return false
}
