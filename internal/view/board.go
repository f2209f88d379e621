package view

import (
	"sync"

	"github.com/i474232898/itinerary-weather/internal/weather"
)

// Change is a partial control update. Nil fields keep their current value.
type Change struct {
	Metric *Metric
	Days   *int
}

type binding struct {
	dataset weather.CityDataset
	state   State
	chart   Chart
}

// Board holds one chart per city of a single Result, addressed by dataset ID.
type Board struct {
	mu       sync.RWMutex
	result   weather.Result
	order    []string
	bindings map[string]*binding
}

// NewBoard renders every city of r with the default controls.
func NewBoard(r weather.Result) *Board {
	b := &Board{
		result:   r,
		order:    make([]string, 0, len(r.PerCity)),
		bindings: make(map[string]*binding, len(r.PerCity)),
	}
	for _, ds := range r.PerCity {
		st := DefaultState().clamp(len(ds.Series))
		b.order = append(b.order, ds.ID)
		b.bindings[ds.ID] = &binding{dataset: ds, state: st, chart: Render(ds, st)}
	}
	return b
}

// Seq is the submission sequence number of the board's result.
func (b *Board) Seq() uint64 {
	return b.result.Seq
}

// Result returns the result the board was built from.
func (b *Board) Result() weather.Result {
	return b.result
}

// Route returns the route dataset of the board's result.
func (b *Board) Route() weather.RouteDataset {
	return b.result.Route
}

// Charts returns the current charts in itinerary order.
func (b *Board) Charts() []Chart {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Chart, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.bindings[id].chart)
	}
	return out
}

// Chart returns the current chart of one city.
func (b *Board) Chart(id string) (Chart, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bd, ok := b.bindings[id]
	if !ok {
		return Chart{}, ErrUnknownCity
	}
	return bd.chart, nil
}

// State returns the current controls of one city.
func (b *Board) State(id string) (State, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bd, ok := b.bindings[id]
	if !ok {
		return State{}, ErrUnknownCity
	}
	return bd.state, nil
}

// Update applies c to the city identified by id and re-renders only that
// city's chart.
func (b *Board) Update(id string, c Change) (Chart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bd, ok := b.bindings[id]
	if !ok {
		return Chart{}, ErrUnknownCity
	}

	st := bd.state
	if c.Metric != nil {
		st.Metric = *c.Metric
	}
	if c.Days != nil {
		st.Days = *c.Days
	}
	bd.state = st.clamp(len(bd.dataset.Series))
	bd.chart = Render(bd.dataset, bd.state)
	return bd.chart, nil
}

// Boards keeps the board of the most recent installed Result.
type Boards struct {
	mu      sync.RWMutex
	current *Board
}

// NewBoards returns an empty holder.
func NewBoards() *Boards {
	return &Boards{}
}

// Install replaces the current board when r is newer than it. It returns the
// board that is current afterwards, which belongs to a newer result than r
// when one was installed first.
func (bs *Boards) Install(r weather.Result) *Board {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	if bs.current != nil && bs.current.Seq() >= r.Seq {
		return bs.current
	}
	bs.current = NewBoard(r)
	return bs.current
}

// Current returns the current board, if any.
func (bs *Boards) Current() (*Board, bool) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.current, bs.current != nil
}

// Sync installs the store's current result when it is newer than the board.
func (bs *Boards) Sync(current func() (weather.Result, bool)) (*Board, bool) {
	r, ok := current()
	if !ok {
		return bs.Current()
	}
	return bs.Install(r), true
}
