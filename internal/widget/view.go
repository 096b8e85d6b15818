package widget

import (
	"fmt"
	"time"

	"github.com/example/availability-scheduler/internal/application"
	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/scheduler"
	"github.com/example/availability-scheduler/internal/selection"
	"github.com/example/availability-scheduler/internal/slottime"
)

// ActiveProfile returns the profile matching the active slug, falling back
// to the first loaded profile.
func (c *Controller) ActiveProfile() (application.Profile, bool) {
	for _, p := range c.profiles {
		if p.Slug == c.activeSlug {
			return p, true
		}
	}
	if len(c.profiles) > 0 {
		return c.profiles[0], true
	}
	return application.Profile{}, false
}

// ConfigTimezone is the zone slot clock times are authored in: the profile
// zone, then the configured zone, then the viewer zone.
func (c *Controller) ConfigTimezone() string {
	var profileTz, configTz string
	if active, ok := c.ActiveProfile(); ok {
		profileTz = active.Timezone
	}
	if c.config != nil {
		configTz = c.config.Timezone
	}
	return slottime.FirstZone(profileTz, configTz, c.timezone)
}

func (c *Controller) Mode() scheduler.Mode {
	if active, ok := c.ActiveProfile(); ok {
		return active.Mode
	}
	return scheduler.ModeWeekly
}

func (c *Controller) viewLocation() *time.Location {
	return slottime.ZoneOr(c.timezone, slottime.DefaultZone)
}

// Resolver converts slots for the current zones and language.
func (c *Controller) Resolver() *slottime.Resolver {
	config := slottime.ZoneOr(c.ConfigTimezone(), c.timezone)
	return slottime.NewResolverWithLocations(config, c.viewLocation(), c.lang, c.now)
}

// VisibleSlots applies the visibility rules and the ordering of the active
// profile's mode.
func (c *Controller) VisibleSlots() []scheduler.Slot {
	showFull := c.config == nil || c.config.ShowFullSlots
	return scheduler.VisibleSlots(c.slots, c.Mode(), c.editMode, showFull)
}

// SelectedSlots returns the visible selected slots in selection order.
func (c *Controller) SelectedSlots() []scheduler.Slot {
	return c.selection.Materialize(c.VisibleSlots())
}

func (c *Controller) WeekBuckets() scheduler.WeekBuckets {
	return scheduler.BucketByWeekday(c.VisibleSlots())
}

func (c *Controller) DateBuckets() []scheduler.DateBucket {
	return scheduler.BucketByDate(c.VisibleSlots())
}

// DefaultDayIndex is the Monday based index of today in the viewer zone, used
// as the initially open day tab.
func (c *Controller) DefaultDayIndex() int {
	return scheduler.TodayIndex(c.now(), c.viewLocation())
}

func (c *Controller) RangeLabel() string {
	return c.Resolver().RangeLabel(c.Mode())
}

func (c *Controller) title() string {
	if active, ok := c.ActiveProfile(); ok && active.Title != "" {
		return active.Title
	}
	if c.config != nil && c.config.Title != "" {
		return c.config.Title
	}
	return c.lang.Text(locale.KeyDefaultTitle)
}

// Message composes the booking request for the current selection.
func (c *Controller) Message() string {
	return selection.Compose(c.Resolver(), selection.Message{
		Title:      c.title(),
		RangeLabel: c.RangeLabel(),
		Slots:      c.SelectedSlots(),
	})
}

// PreviewMessage is the bulleted text of the share card. It lists every
// visible slot while nothing is selected.
func (c *Controller) PreviewMessage() string {
	return selection.Compose(c.Resolver(), selection.Message{
		Title:      c.title(),
		RangeLabel: c.RangeLabel(),
		Slots:      c.SelectedSlots(),
		Fallback:   c.VisibleSlots(),
	}, selection.WithStyle(selection.Bulleted), selection.WithPreviewFallback())
}

// Card is the rendered form of one slot.
type Card struct {
	Slot     scheduler.Slot
	DayLabel string
	Range    string
	Spots    string
	Pill     string
	Selected bool
	// Disabled is set outside edit mode for slots viewers may not pick.
	Disabled bool
	// Joinable reports whether the join request action is offered.
	Joinable bool
}

// Cards renders the visible slots.
func (c *Controller) Cards() []Card {
	r := c.Resolver()
	visible := c.VisibleSlots()
	cards := make([]Card, 0, len(visible))
	for _, slot := range visible {
		d := r.Resolve(slot)
		cards = append(cards, Card{
			Slot:     slot,
			DayLabel: d.DayLabel,
			Range:    d.Range,
			Spots:    SpotsLabel(slot, c.lang),
			Pill:     PillClass(slot.Status),
			Selected: c.selection.Contains(slot.ID),
			Disabled: !c.editMode && !slot.Selectable(),
			Joinable: !c.editMode && slot.Selectable(),
		})
	}
	return cards
}

// RequestSlotLabel resolves a request's slot snapshot. Snapshots are shown
// in the viewer zone on both sides of the conversion.
func (c *Controller) RequestSlotLabel(request application.SlotRequest) (slottime.Display, bool) {
	if request.Snapshot == nil {
		return slottime.Display{}, false
	}
	view := c.viewLocation()
	r := slottime.NewResolverWithLocations(view, view, c.lang, c.now)
	return r.Resolve(request.Snapshot.Slot(request.SlotID, request.ProfileID)), true
}

// SpotsLabel renders "{available}/{total} {spots left}" when a positive
// total is recorded and "" otherwise.
func SpotsLabel(slot scheduler.Slot, lang locale.Language) string {
	summary, ok := slot.SpotsSummary()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %s", summary, lang.Text(locale.KeySpotsLeft))
}

// PillClass names the status pill style of a slot.
func PillClass(status scheduler.Status) string {
	switch status {
	case scheduler.StatusAvailable:
		return "statusAvailable"
	case scheduler.StatusFewLeft:
		return "statusFew"
	case scheduler.StatusFull, scheduler.StatusOccupied, scheduler.StatusHidden:
		return "statusFull"
	}
	return "statusFull"
}
