package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

type stubSubmitter struct {
	got []itinerary.Itinerary
	err error
}

func (s *stubSubmitter) Submit(_ context.Context, it itinerary.Itinerary) (weather.Result, error) {
	s.got = append(s.got, it)
	if s.err != nil {
		return weather.Result{}, s.err
	}
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	res := weather.Result{Seq: 1, Itinerary: it}
	for _, c := range it.Cities() {
		series := make(weather.ForecastSeries, 0, 5)
		for i := 0; i < 5; i++ {
			series = append(series, weather.ForecastRecord{
				Date:                     base.AddDate(0, 0, i),
				MaxTemperature:           12.5,
				WindSpeed:                7,
				PrecipitationProbability: 40,
			})
		}
		res.PerCity = append(res.PerCity, weather.CityDataset{ID: "id-" + c, City: c, Series: series})
	}
	return res, nil
}

func send(t *testing.T, s *Service, id string, inputs ...string) Response {
	t.Helper()
	var resp Response
	for _, in := range inputs {
		var err error
		resp, err = s.Handle(context.Background(), id, in)
		require.NoError(t, err)
	}
	return resp
}

func TestConversationProducesForecast(t *testing.T) {
	sub := &stubSubmitter{}
	s := NewService(sub, "http://localhost:8080/dashboard", logger.Nop())

	resp := send(t, s, "u1", "/weather", "Paris", "Berlin", "Lyon, Dijon")
	assert.Equal(t, "awaiting_window", resp.State)
	require.Len(t, resp.Buttons, 3)
	assert.Equal(t, "3", resp.Buttons[1].Data)

	resp = send(t, s, "u1", "3")
	assert.Equal(t, "finalized", resp.State)
	require.Len(t, sub.got, 1)
	assert.Equal(t, []string{"Paris", "Lyon", "Dijon", "Berlin"}, sub.got[0].Cities())

	// status line, one message per city, dashboard link
	require.Len(t, resp.Messages, 6)
	assert.Contains(t, resp.Messages[1], "Weather forecast for Paris")
	assert.Equal(t, 3, strings.Count(resp.Messages[1], "Date: "))
	assert.Contains(t, resp.Messages[1], "Temperature (°C): 12.5")
	assert.Contains(t, resp.Messages[4], "Berlin")
	assert.Equal(t, "Charts for this route: http://localhost:8080/dashboard?start-city=Paris&end-city=Berlin", resp.Messages[5])
}

func TestConversationFailureMessage(t *testing.T) {
	sub := &stubSubmitter{err: &weather.AggregationError{Kind: weather.KindCityNotFound, City: "Atlantis", Err: weather.ErrLocationNotFound}}
	s := NewService(sub, "", logger.Nop())

	resp := send(t, s, "u1", "/weather", "Atlantis", "Berlin", "skip", "1")
	require.Len(t, resp.Messages, 2)
	assert.Contains(t, resp.Messages[1], "Atlantis")
}

func TestConversationSuperseded(t *testing.T) {
	sub := &stubSubmitter{err: weather.ErrSuperseded}
	s := NewService(sub, "", logger.Nop())

	resp := send(t, s, "u1", "/weather", "Paris", "Berlin", "/skip", "5")
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, textSuperseded, resp.Messages[1])
}

func TestInvalidWindowDoesNotSubmit(t *testing.T) {
	sub := &stubSubmitter{}
	s := NewService(sub, "", logger.Nop())

	resp := send(t, s, "u1", "/weather", "Paris", "Berlin", "skip", "4")
	assert.Equal(t, "awaiting_window", resp.State)
	assert.Len(t, resp.Buttons, 3)
	assert.Empty(t, sub.got)
}

func TestSessionsAreIndependent(t *testing.T) {
	s := NewService(&stubSubmitter{}, "", logger.Nop())

	send(t, s, "a", "/weather", "Paris")
	send(t, s, "b", "/weather")

	st, ok := s.State("a")
	require.True(t, ok)
	assert.Equal(t, itinerary.StateAwaitingEnd, st)
	st, _ = s.State("b")
	assert.Equal(t, itinerary.StateAwaitingStart, st)
}

func TestEmptySessionID(t *testing.T) {
	s := NewService(&stubSubmitter{}, "", logger.Nop())
	_, err := s.Handle(context.Background(), "  ", "/start")
	assert.True(t, errors.Is(err, ErrEmptySessionID))
}

func TestSweepDropsIdleSessions(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	s := NewService(&stubSubmitter{}, "", logger.Nop())
	s.now = func() time.Time { return now }

	send(t, s, "old", "/weather")
	now = now.Add(time.Hour)
	send(t, s, "new", "/weather")

	assert.Equal(t, 1, s.Sweep(30*time.Minute))
	assert.Equal(t, 1, s.Len())
	_, ok := s.State("old")
	assert.False(t, ok)
}

func TestDashboardLinkEscapes(t *testing.T) {
	s := NewService(&stubSubmitter{}, "http://host/?tab=map", logger.Nop())
	link := s.dashboardLink(itinerary.Itinerary{StartCity: "New York", EndCity: "São Paulo"})
	assert.Equal(t, "http://host/?tab=map&start-city=New+York&end-city=S%C3%A3o+Paulo", link)
}

func TestNewSessionIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
