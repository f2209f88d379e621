package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizes(t *testing.T) {
	it, err := New(" Paris ", "Berlin ", []string{" Lyon", "", "  ", "Dijon"}, 3)
	require.NoError(t, err)

	assert.Equal(t, "Paris", it.StartCity)
	assert.Equal(t, "Berlin", it.EndCity)
	assert.Equal(t, []string{"Lyon", "Dijon"}, it.IntermediateCities)
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		days  int
	}{
		{"missing start", "  ", "Berlin", 3},
		{"missing end", "Paris", "", 3},
		{"bad window", "Paris", "Berlin", 2},
		{"zero window", "Paris", "Berlin", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.start, tt.end, nil, tt.days)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestCitiesOrder(t *testing.T) {
	it := Itinerary{StartCity: "A", EndCity: "D", IntermediateCities: []string{"B", "C"}, WindowDays: 1}
	assert.Equal(t, []string{"A", "B", "C", "D"}, it.Cities())

	it.IntermediateCities = nil
	assert.Equal(t, []string{"A", "D"}, it.Cities())
}

func TestParseWindow(t *testing.T) {
	for _, ok := range []string{"1", " 3", "5 "} {
		_, valid := ParseWindow(ok)
		assert.True(t, valid, ok)
	}
	for _, bad := range []string{"2", "x", "", "-1"} {
		_, valid := ParseWindow(bad)
		assert.False(t, valid, bad)
	}
}
