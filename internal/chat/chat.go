// Package chat drives itinerary collection over a text conversation and
// replies with the forecast once the itinerary is complete.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/itinerary-weather/internal/itinerary"
	"github.com/i474232898/itinerary-weather/internal/logger"
	"github.com/i474232898/itinerary-weather/internal/metrics"
	"github.com/i474232898/itinerary-weather/internal/weather"
)

// ErrEmptySessionID is returned by Handle for a blank session ID.
var ErrEmptySessionID = errors.New("session id is required")

const textSuperseded = "A newer request replaced this one. Send /weather to try again."

// Submitter runs an aggregation for a finalized itinerary.
type Submitter interface {
	Submit(ctx context.Context, it itinerary.Itinerary) (weather.Result, error)
}

// Response is everything to send back for one user message.
type Response struct {
	SessionID string             `json:"sessionId"`
	State     string             `json:"state"`
	Messages  []string           `json:"messages"`
	Buttons   []itinerary.Button `json:"buttons,omitempty"`
}

type session struct {
	state    itinerary.Session
	lastSeen time.Time
}

// Service keeps one collection session per conversation.
type Service struct {
	submitter    Submitter
	dashboardURL string
	log          logger.Logger

	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

// NewService creates a conversation service. dashboardURL may be empty, in
// which case no dashboard link is sent.
func NewService(submitter Submitter, dashboardURL string, log logger.Logger) *Service {
	return &Service{
		submitter:    submitter,
		dashboardURL: strings.TrimSpace(dashboardURL),
		log:          log.WithField("component", "chat"),
		sessions:     make(map[string]*session),
		now:          time.Now,
	}
}

// NewSessionID returns a fresh random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Handle feeds text into the session and, when it completes an itinerary,
// runs the aggregation and formats the forecast.
func (s *Service) Handle(ctx context.Context, sessionID, text string) (Response, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return Response{}, ErrEmptySessionID
	}

	next, reply := s.step(sessionID, text)
	resp := Response{
		SessionID: sessionID,
		State:     next.State.String(),
		Messages:  []string{reply.Text},
		Buttons:   reply.Buttons,
	}
	if reply.Itinerary == nil {
		return resp, nil
	}

	it := *reply.Itinerary
	res, err := s.submitter.Submit(ctx, it)
	if err != nil {
		s.log.WithFields(map[string]interface{}{
			"session": sessionID,
			"cities":  len(it.Cities()),
		}).Warnf("aggregation failed: %v", err)
		resp.Messages = append(resp.Messages, failureMessage(err))
		return resp, nil
	}

	for _, ds := range res.PerCity {
		resp.Messages = append(resp.Messages, FormatForecast(ds, it.WindowDays))
	}
	if link := s.dashboardLink(it); link != "" {
		resp.Messages = append(resp.Messages, "Charts for this route: "+link)
	}
	return resp, nil
}

func (s *Service) step(sessionID, text string) (itinerary.Session, itinerary.Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
		metrics.SetChatSessions(len(s.sessions))
	}

	next, reply := itinerary.Step(sess.state, text)
	sess.state = next
	sess.lastSeen = s.now()
	return next, reply
}

// State returns the collection state of a session.
func (s *Service) State(sessionID string) (itinerary.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return itinerary.StateIdle, false
	}
	return sess.state.State, true
}

// Sweep forgets sessions idle for longer than maxIdle.
func (s *Service) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	metrics.SetChatSessions(len(s.sessions))
	return n
}

// Len returns the number of open sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) dashboardLink(it itinerary.Itinerary) string {
	if s.dashboardURL == "" {
		return ""
	}
	sep := "?"
	if strings.Contains(s.dashboardURL, "?") {
		sep = "&"
	}
	return s.dashboardURL + sep +
		"start-city=" + url.QueryEscape(it.StartCity) +
		"&end-city=" + url.QueryEscape(it.EndCity)
}

func failureMessage(err error) string {
	if errors.Is(err, weather.ErrSuperseded) {
		return textSuperseded
	}
	return weather.UserMessage(err)
}

// FormatForecast renders the first days records of a city's forecast.
func FormatForecast(ds weather.CityDataset, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather forecast for %s\n", ds.City)
	for _, r := range ds.Series.Head(days) {
		fmt.Fprintf(&b, "\nDate: %s\nTemperature (°C): %.1f\nWind speed (km/h): %.1f\nPrecipitation probability (%%): %.0f\n",
			r.Date.Format("2006-01-02"), r.MaxTemperature, r.WindSpeed, r.PrecipitationProbability)
	}
	return b.String()
}
