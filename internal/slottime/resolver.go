// Package slottime turns slot definitions into instants and localized labels.
//
// Slot clock times are authored in the profile zone. A weekly slot is placed
// on the matching day of the current Monday-start week as seen from the
// viewer zone, interpreted in the profile zone and then shown in the viewer
// zone. Labels always follow the converted start instant.
package slottime

import (
	"fmt"
	"time"

	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/scheduler"
)

// Display is the resolved, viewer facing form of a slot.
type Display struct {
	DayLabel string
	Range    string
	// Start and End are expressed in the viewer zone.
	Start time.Time
	End   time.Time
}

// Resolver converts slots for one profile zone, viewer zone and language.
type Resolver struct {
	config *time.Location
	view   *time.Location
	lang   locale.Language
	now    func() time.Time
}

// NewResolver loads both zones by name.
func NewResolver(configTz, viewTz string, lang locale.Language, now func() time.Time) (*Resolver, error) {
	config, err := LoadZone(configTz)
	if err != nil {
		return nil, fmt.Errorf("config zone: %w", err)
	}
	view, err := LoadZone(viewTz)
	if err != nil {
		return nil, fmt.Errorf("view zone: %w", err)
	}
	return NewResolverWithLocations(config, view, lang, now), nil
}

// NewResolverWithLocations builds a resolver from loaded zones. Nil zones
// default to UTC and a nil clock to time.Now.
func NewResolverWithLocations(config, view *time.Location, lang locale.Language, now func() time.Time) *Resolver {
	if config == nil {
		config = time.UTC
	}
	if view == nil {
		view = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{config: config, view: view, lang: lang, now: now}
}

// ViewZone returns the viewer zone.
func (r *Resolver) ViewZone() *time.Location { return r.view }

// ConfigZone returns the profile zone.
func (r *Resolver) ConfigZone() *time.Location { return r.config }

// Language returns the label language.
func (r *Resolver) Language() locale.Language { return r.lang }

// WeekStart returns the Monday of the current week in the viewer zone.
func (r *Resolver) WeekStart() scheduler.Date {
	return WeekStart(r.now(), r.view)
}

// AnchorDate returns the calendar date a slot's clock times are attached to.
func (r *Resolver) AnchorDate(slot scheduler.Slot) scheduler.Date {
	if slot.HasDate() {
		return slot.Date
	}
	return r.WeekStart().AddDays(scheduler.WeekdayIndex(slot.DayOfWeek))
}

// Instants returns the slot start and end as absolute instants in the viewer
// zone.
func (r *Resolver) Instants(slot scheduler.Slot) (time.Time, time.Time) {
	anchor := r.AnchorDate(slot)
	start := slot.StartTime.On(anchor, r.config)
	end := slot.EndTime.On(anchor, r.config)
	return start.In(r.view), end.In(r.view)
}

// Resolve produces the display labels of a slot.
func (r *Resolver) Resolve(slot scheduler.Slot) Display {
	start, end := r.Instants(slot)
	return Display{
		DayLabel: DayLabel(start, r.lang, slot.HasDate()),
		Range:    TimeRange(start, end),
		Start:    start,
		End:      end,
	}
}

// Resolve is a convenience wrapper that loads both zones and uses the
// current time.
func Resolve(slot scheduler.Slot, configTz, viewTz string, lang locale.Language) (Display, error) {
	r, err := NewResolver(configTz, viewTz, lang, nil)
	if err != nil {
		return Display{}, err
	}
	return r.Resolve(slot), nil
}

// WeekStart returns the Monday of the week containing now in loc.
func WeekStart(now time.Time, loc *time.Location) scheduler.Date {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	offset := (int(local.Weekday()) + 6) % 7
	return scheduler.DateOf(local).AddDays(-offset)
}

// DayLabel formats "EEE, d MMM", adding the year for dated slots.
func DayLabel(t time.Time, lang locale.Language, withYear bool) string {
	label := fmt.Sprintf("%s, %s", lang.WeekdayAbbrev(t.Weekday()), dayMonth(scheduler.DateOf(t), lang))
	if withYear {
		label = fmt.Sprintf("%s %d", label, t.Year())
	}
	return label
}

// TimeRange formats two instants as "HH:MM–HH:MM" using 24 hour clocks.
func TimeRange(start, end time.Time) string {
	return start.Format("15:04") + "–" + end.Format("15:04")
}

func dayMonth(d scheduler.Date, lang locale.Language) string {
	return fmt.Sprintf("%d %s", d.Day, lang.MonthAbbrev(d.Month))
}
