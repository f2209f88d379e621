package itinerary

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrFormNotFound is returned for an unknown form ID.
	ErrFormNotFound = errors.New("form not found")
	// ErrSlotNotFound is returned for an unknown slot ID.
	ErrSlotNotFound = errors.New("slot not found")
)

// Slot is one intermediate-city input. ID is generated on creation and never
// reused, so a slot keeps its identity when others are removed.
type Slot struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Form holds the intermediate-city slots of one dashboard page.
type Form struct {
	ID string

	mu        sync.Mutex
	slots     []Slot
	updatedAt time.Time
}

// NewForm creates an empty form.
func NewForm() *Form {
	return &Form{ID: uuid.NewString(), updatedAt: time.Now()}
}

// Add appends a new empty slot and returns it.
func (f *Form) Add() Slot {
	f.mu.Lock()
	defer f.mu.Unlock()

	s := Slot{ID: uuid.NewString()}
	f.slots = append(f.slots, s)
	f.touch()
	return s
}

// SetValue stores the value typed into the slot with the given ID.
func (f *Form) SetValue(id, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.slots {
		if f.slots[i].ID == id {
			f.slots[i].Value = value
			f.touch()
			return nil
		}
	}
	return ErrSlotNotFound
}

// Remove deletes the slots with the given IDs. Unknown IDs are ignored.
// It returns the number of slots removed.
func (f *Form) Remove(ids ...string) int {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.filter(func(i int, s Slot) bool { return drop[s.ID] })
}

// RemoveAt deletes a batch of slots addressed by the positions they had when
// the form was last rendered. All indices refer to that same rendering, so
// removing 0 and 2 drops the first and third slots regardless of order.
// Duplicates and out-of-range indices are ignored.
func (f *Form) RemoveAt(indices ...int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	positions := make([]int, 0, len(indices))
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(f.slots) || seen[idx] {
			continue
		}
		seen[idx] = true
		positions = append(positions, idx)
	}
	sort.Ints(positions)

	removed := make([]string, 0, len(positions))
	for _, p := range positions {
		removed = append(removed, f.slots[p].ID)
	}
	f.filter(func(i int, s Slot) bool { return seen[i] })
	return removed
}

// filter drops the slots for which drop returns true, keeping the relative
// order of the others. Callers must hold f.mu.
func (f *Form) filter(drop func(i int, s Slot) bool) int {
	kept := make([]Slot, 0, len(f.slots))
	for i, s := range f.slots {
		if !drop(i, s) {
			kept = append(kept, s)
		}
	}
	n := len(f.slots) - len(kept)
	f.slots = kept
	if n > 0 {
		f.touch()
	}
	return n
}

// Slots returns a copy of the slots in display order.
func (f *Form) Slots() []Slot {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Slot, len(f.slots))
	copy(out, f.slots)
	return out
}

// Values returns the trimmed, non-blank slot values in display order.
func (f *Form) Values() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.slots))
	for _, s := range f.slots {
		if v := strings.TrimSpace(s.Value); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// UpdatedAt is the time of the last change to the form.
func (f *Form) UpdatedAt() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updatedAt
}

func (f *Form) touch() {
	f.updatedAt = time.Now()
}

// FormRegistry keeps the open dashboard forms in memory.
type FormRegistry struct {
	mu    sync.RWMutex
	forms map[string]*Form
}

// NewFormRegistry creates an empty registry.
func NewFormRegistry() *FormRegistry {
	return &FormRegistry{forms: make(map[string]*Form)}
}

// Create registers and returns a new empty form.
func (r *FormRegistry) Create() *Form {
	f := NewForm()

	r.mu.Lock()
	r.forms[f.ID] = f
	r.mu.Unlock()
	return f
}

// Get looks up a form by ID.
func (r *FormRegistry) Get(id string) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	return f, nil
}

// Delete drops a form.
func (r *FormRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.forms, id)
	r.mu.Unlock()
}

// Sweep drops forms untouched for longer than maxIdle and returns how many
// were removed.
func (r *FormRegistry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, f := range r.forms {
		if f.UpdatedAt().Before(cutoff) {
			delete(r.forms, id)
			n++
		}
	}
	return n
}

// Len returns the number of open forms.
func (r *FormRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}
