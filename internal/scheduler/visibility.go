package scheduler

import "sort"

// VisibleSlots derives the displayable slot set. Outside edit mode slots
// flagged invisible are dropped; when showFull is false slots with status
// exactly Full are dropped as well. The result is ordered for mode and the
// input slice is left untouched.
func VisibleSlots(all []Slot, mode Mode, editMode, showFull bool) []Slot {
	out := make([]Slot, 0, len(all))
	for _, slot := range all {
		if !editMode && !slot.Visible() {
			continue
		}
		if !showFull && slot.Status == StatusFull {
			continue
		}
		out = append(out, slot)
	}
	SortSlots(out, mode)
	return out
}

// SortSlots orders slots in place. Weekly slots follow the Monday first
// display order, calendar slots their date with undated slots last. Ties
// are broken by start time.
func SortSlots(slots []Slot, mode Mode) {
	sort.SliceStable(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		switch mode {
		case ModeCalendar:
			if a.HasDate() != b.HasDate() {
				return a.HasDate()
			}
			if a.Date != b.Date {
				return a.Date.Before(b.Date)
			}
		case ModeWeekly:
			ai, bi := WeekdayIndex(a.DayOfWeek), WeekdayIndex(b.DayOfWeek)
			if ai != bi {
				return ai < bi
			}
		}
		return a.StartTime.Minutes() < b.StartTime.Minutes()
	})
}
