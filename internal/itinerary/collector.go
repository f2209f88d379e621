package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/itinerary-weather/internal/common"
)

// State is the step of a collection session.
type State int

const (
	StateIdle State = iota
	StateAwaitingStart
	StateAwaitingEnd
	StateAwaitingIntermediates
	StateAwaitingWindow
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingStart:
		return "awaiting_start"
	case StateAwaitingEnd:
		return "awaiting_end"
	case StateAwaitingIntermediates:
		return "awaiting_intermediates"
	case StateAwaitingWindow:
		return "awaiting_window"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Conversation commands understood by Step.
const (
	CommandStart   = "/start"
	CommandHelp    = "/help"
	CommandWeather = "/weather"
	CommandSkip    = "/skip"
	CommandCancel  = "/cancel"
)

const (
	promptStart         = "Enter the starting city of the route"
	promptEnd           = "Enter the destination city"
	promptIntermediates = "Enter intermediate cities separated by commas, or send /skip"
	promptWindow        = "Choose the forecast period"
	promptEmptyCity     = "The city name cannot be empty."
	promptBadWindow     = "Please pick one of the offered periods."
	textGreeting        = "Hi! I report the weather along your route. Send /help for the list of commands."
	textHelp            = "Commands:\n/start - greeting\n/help - this help\n/weather - plan a route and get the forecast\n/cancel - abort the current request"
	textCancelled       = "Request cancelled. Send /weather to start again."
	textIdleHint        = "Send /weather to plan a route."
)

// Button is a selectable reply option offered to the user.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Session is the per-user collection state. The zero value is an idle session.
type Session struct {
	State State     `json:"state"`
	Draft Itinerary `json:"draft"`
}

// Reply is what the collector wants the transport to send back.
// Itinerary is set exactly once, on the step that finalizes the session.
type Reply struct {
	Text      string     `json:"text"`
	Buttons   []Button   `json:"buttons,omitempty"`
	Itinerary *Itinerary `json:"itinerary,omitempty"`
}

// NewSession returns a session already waiting for the start city.
func NewSession() Session {
	return Session{State: StateAwaitingStart}
}

// WindowButtons returns one button per window option.
func WindowButtons() []Button {
	buttons := make([]Button, 0, len(WindowOptions))
	for _, n := range WindowOptions {
		label := fmt.Sprintf("%d days", n)
		if n == 1 {
			label = "1 day"
		}
		buttons = append(buttons, Button{Text: label, Data: strconv.Itoa(n)})
	}
	return buttons
}

// Step applies one user input to a session and returns the next session along
// with the reply. It has no side effects; invalid input leaves the state as is
// and re-prompts.
func Step(s Session, input string) (Session, Reply) {
	input = strings.TrimSpace(input)

	switch command(input) {
	case CommandStart:
		return s, Reply{Text: textGreeting}
	case CommandHelp:
		return s, Reply{Text: textHelp}
	case CommandWeather:
		return NewSession(), Reply{Text: promptStart}
	case CommandCancel:
		return Session{}, Reply{Text: textCancelled}
	}

	switch s.State {
	case StateAwaitingStart:
		if !isCityName(input) {
			return s, Reply{Text: promptEmptyCity + " " + promptStart}
		}
		s.Draft.StartCity = input
		s.State = StateAwaitingEnd
		return s, Reply{Text: promptEnd}

	case StateAwaitingEnd:
		if !isCityName(input) {
			return s, Reply{Text: promptEmptyCity + " " + promptEnd}
		}
		s.Draft.EndCity = input
		s.State = StateAwaitingIntermediates
		return s, Reply{Text: promptIntermediates}

	case StateAwaitingIntermediates:
		if command(input) == CommandSkip || common.EqualFoldAny(input, "skip") {
			s.Draft.IntermediateCities = []string{}
		} else {
			s.Draft.IntermediateCities = common.SplitList(input, ",")
		}
		s.State = StateAwaitingWindow
		return s, Reply{Text: promptWindow, Buttons: WindowButtons()}

	case StateAwaitingWindow:
		days, ok := ParseWindow(input)
		if !ok {
			return s, Reply{Text: promptBadWindow + " " + promptWindow, Buttons: WindowButtons()}
		}
		s.Draft.WindowDays = days
		s.State = StateFinalized

		it := s.Draft
		it.IntermediateCities = append([]string{}, s.Draft.IntermediateCities...)
		return s, Reply{
			Text:      fmt.Sprintf("Fetching the forecast for %d cities...", len(it.Cities())),
			Itinerary: &it,
		}

	default:
		return s, Reply{Text: textIdleHint}
	}
}

// command extracts a slash command, dropping a "@botname" suffix.
func command(input string) string {
	if !strings.HasPrefix(input, "/") {
		return ""
	}
	name := strings.Fields(input)[0]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}

func isCityName(s string) bool {
	return s != "" && !strings.HasPrefix(s, "/")
}
