// Package selection tracks the slots a visitor picked and composes the
// booking request message sent to the administrator.
package selection

import (
	"slices"

	"github.com/example/availability-scheduler/internal/scheduler"
)

// Max is the number of slots a visitor may pick at once.
const Max = 3

// Set is an ordered list of selected slot ids. The zero value is empty.
type Set struct {
	ids []string
}

// Toggle removes id when present and appends it when there is room. A toggle
// on a full set for a new id is ignored. The result reports whether the set
// changed.
func (s *Set) Toggle(id string) bool {
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
		return true
	}
	if len(s.ids) >= Max {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// ToggleSlot toggles a slot when its status allows viewers to pick it.
func (s *Set) ToggleSlot(slot scheduler.Slot) bool {
	if !slot.Selectable() {
		return false
	}
	return s.Toggle(slot.ID)
}

// Clear empties the set.
func (s *Set) Clear() {
	s.ids = nil
}

// Contains reports whether id is selected.
func (s *Set) Contains(id string) bool {
	return slices.Contains(s.ids, id)
}

// Len returns the number of selected ids, stale ones included.
func (s *Set) Len() int {
	return len(s.ids)
}

// IDs returns a copy of the selected ids in selection order.
func (s *Set) IDs() []string {
	return slices.Clone(s.ids)
}

// Materialize joins the selection against the visible slots, keeping
// selection order. Ids with no visible slot are skipped but stay selected.
func (s *Set) Materialize(visible []scheduler.Slot) []scheduler.Slot {
	if len(s.ids) == 0 {
		return nil
	}
	byID := make(map[string]scheduler.Slot, len(visible))
	for _, slot := range visible {
		byID[slot.ID] = slot
	}
	out := make([]scheduler.Slot, 0, len(s.ids))
	for _, id := range s.ids {
		if slot, ok := byID[id]; ok {
			out = append(out, slot)
		}
	}
	return out
}
