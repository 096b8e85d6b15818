// Package scheduler holds the slot model shared by the store and the widget,
// together with the visibility, ordering and bucketing rules applied before
// slots are displayed.
package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the admin assigned display tag of a slot. It is never derived from
// the capacity counters.
type Status int

const (
	StatusAvailable Status = iota
	StatusFewLeft
	StatusFull
	StatusOccupied
	StatusHidden
)

// ErrUnknownStatus is returned when a status literal is not recognized.
var ErrUnknownStatus = errors.New("scheduler: unknown slot status")

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusFewLeft:
		return "FewLeft"
	case StatusFull:
		return "Full"
	case StatusOccupied:
		return "Occupied"
	case StatusHidden:
		return "Hidden"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Selectable reports whether a viewer may pick a slot with this status.
func (s Status) Selectable() bool {
	switch s {
	case StatusAvailable, StatusFewLeft:
		return true
	case StatusFull, StatusOccupied, StatusHidden:
		return false
	}
	return false
}

// ParseStatus converts the stored literal into a Status.
func ParseStatus(value string) (Status, error) {
	switch strings.TrimSpace(value) {
	case "Available":
		return StatusAvailable, nil
	case "FewLeft":
		return StatusFewLeft, nil
	case "Full":
		return StatusFull, nil
	case "Occupied":
		return StatusOccupied, nil
	case "Hidden":
		return StatusHidden, nil
	}
	return StatusAvailable, fmt.Errorf("%w: %q", ErrUnknownStatus, value)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusAvailable, StatusFewLeft, StatusFull, StatusOccupied, StatusHidden:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Mode selects how the slots of a profile are anchored in time.
type Mode int

const (
	// ModeWeekly slots repeat every week on their day of week.
	ModeWeekly Mode = iota
	// ModeCalendar slots happen once on an explicit date.
	ModeCalendar
)

func (m Mode) String() string {
	switch m {
	case ModeCalendar:
		return "calendar"
	case ModeWeekly:
		return "weekly"
	}
	return "weekly"
}

// ParseMode normalizes a stored mode literal. Anything other than "calendar"
// is treated as weekly.
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), "calendar") {
		return ModeCalendar
	}
	return ModeWeekly
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	*m = ParseMode(string(text))
	return nil
}

// Slot is one offered time window.
type Slot struct {
	ID        string
	ProfileID string
	// Date is set for calendar slots. DayOfWeek is then kept in sync with it.
	Date Date
	// DayOfWeek uses Sunday = 0 through Saturday = 6.
	DayOfWeek      int
	StartTime      TimeOfDay
	EndTime        TimeOfDay
	Status         Status
	SpotsTotal     *int
	SpotsAvailable *int
	Label          string
	Note           string
	// Visibility nil means visible.
	Visibility *bool
}

// HasDate reports whether the slot is anchored to an explicit date.
func (s Slot) HasDate() bool {
	return !s.Date.IsZero()
}

// Visible reports the effective visibility flag.
func (s Slot) Visible() bool {
	return s.Visibility == nil || *s.Visibility
}

// Selectable reports whether a viewer may select the slot.
func (s Slot) Selectable() bool {
	return s.Status.Selectable()
}

// SpotsSummary renders "available/total" when a positive total is recorded.
func (s Slot) SpotsSummary() (string, bool) {
	if s.SpotsTotal == nil || *s.SpotsTotal <= 0 {
		return "", false
	}
	available := 0
	if s.SpotsAvailable != nil {
		available = *s.SpotsAvailable
	}
	return fmt.Sprintf("%d/%d", available, *s.SpotsTotal), true
}

// SyncDayOfWeek derives DayOfWeek from Date for calendar slots.
func (s *Slot) SyncDayOfWeek() {
	if s == nil || s.Date.IsZero() {
		return
	}
	s.DayOfWeek = s.Date.DayOfWeek()
}

// ValidDayOfWeek reports whether dow is within Sunday..Saturday.
func ValidDayOfWeek(dow int) bool {
	return dow >= 0 && dow <= 6
}

// WeekdayIndex converts a Sunday based day of week into the Monday based
// column index used for display.
func WeekdayIndex(dow int) int {
	if dow == 0 {
		return 6
	}
	return dow - 1
}

// DayOfWeekForIndex is the inverse of WeekdayIndex.
func DayOfWeekForIndex(index int) int {
	if index == 6 {
		return 0
	}
	return index + 1
}

// TodayIndex returns the Monday based index of now in loc.
func TodayIndex(now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	return WeekdayIndex(int(now.In(loc).Weekday()))
}
