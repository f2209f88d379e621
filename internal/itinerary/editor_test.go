package itinerary

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formWith(t *testing.T, values ...string) (*Form, []Slot) {
	t.Helper()
	f := NewForm()
	slots := make([]Slot, 0, len(values))
	for _, v := range values {
		s := f.Add()
		require.NoError(t, f.SetValue(s.ID, v))
		s.Value = v
		slots = append(slots, s)
	}
	return f, slots
}

func TestFormRemoveMiddle(t *testing.T) {
	f, slots := formWith(t, "A", "B", "C")

	removed := f.RemoveAt(1)

	assert.Equal(t, []string{slots[1].ID}, removed)
	assert.Equal(t, []string{"A", "C"}, f.Values())
	assert.Equal(t, []Slot{slots[0], slots[2]}, f.Slots())
}

func TestFormRemoveFirstKeepsOthers(t *testing.T) {
	f, slots := formWith(t, "A", "B", "C")

	f.RemoveAt(0)

	assert.Equal(t, []Slot{slots[1], slots[2]}, f.Slots())
}

func TestFormBatchRemovalUsesRenderTimeIndices(t *testing.T) {
	f, slots := formWith(t, "A", "B", "C", "D", "E")

	removed := f.RemoveAt(3, 0, 1, 3, 99, -1)

	assert.Equal(t, []string{slots[0].ID, slots[1].ID, slots[3].ID}, removed)
	assert.Equal(t, []string{"C", "E"}, f.Values())
}

func TestFormRemoveByID(t *testing.T) {
	f, slots := formWith(t, "A", "B", "C")

	n := f.Remove(slots[2].ID, slots[0].ID, "missing")

	assert.Equal(t, 2, n)
	assert.Equal(t, []Slot{slots[1]}, f.Slots())
}

func TestFormSlotIDsAreNotReused(t *testing.T) {
	f, slots := formWith(t, "A", "B")
	f.RemoveAt(1)
	added := f.Add()

	assert.NotEqual(t, slots[1].ID, added.ID)
	assert.NotEqual(t, slots[0].ID, added.ID)
}

func TestFormValuesSkipBlank(t *testing.T) {
	f, _ := formWith(t, " Lyon ", "", "  ", "Dijon")
	assert.Equal(t, []string{"Lyon", "Dijon"}, f.Values())
}

func TestFormSetValueUnknownSlot(t *testing.T) {
	f := NewForm()
	assert.ErrorIs(t, f.SetValue("nope", "Lyon"), ErrSlotNotFound)
}

// Any sequence of adds and removes leaves the surviving slots in creation
// order with their values intact.
func TestFormRandomOperationsPreserveOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		f := NewForm()
		var model []Slot

		for op := 0; op < 40; op++ {
			if len(model) == 0 || rng.Intn(3) > 0 {
				s := f.Add()
				s.Value = string(rune('a' + op%26))
				require.NoError(t, f.SetValue(s.ID, s.Value))
				model = append(model, s)
				continue
			}

			var idx []int
			drop := map[int]bool{}
			for k := rng.Intn(3) + 1; k > 0; k-- {
				i := rng.Intn(len(model))
				idx = append(idx, i)
				drop[i] = true
			}
			f.RemoveAt(idx...)

			var kept []Slot
			for i, s := range model {
				if !drop[i] {
					kept = append(kept, s)
				}
			}
			model = kept
		}

		got := f.Slots()
		if len(model) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, model, got)
	}
}

func TestFormRegistry(t *testing.T) {
	r := NewFormRegistry()
	f := r.Create()

	got, err := r.Get(f.ID)
	require.NoError(t, err)
	assert.Same(t, f, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrFormNotFound)

	assert.Equal(t, 0, r.Sweep(time.Hour))
	assert.Equal(t, 1, r.Len())

	f.mu.Lock()
	f.updatedAt = time.Now().Add(-2 * time.Hour)
	f.mu.Unlock()

	assert.Equal(t, 1, r.Sweep(time.Hour))
	assert.Equal(t, 0, r.Len())
}
