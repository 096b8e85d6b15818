package slottime

import (
	"fmt"
	"time"

	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/scheduler"
)

// RangeLabel describes the browsing period shown above the grid: the current
// week for weekly profiles, the current month for calendar profiles.
func (r *Resolver) RangeLabel(mode scheduler.Mode) string {
	return RangeLabel(mode, r.now(), r.view, r.lang)
}

// RangeLabel is the zone and clock explicit form of Resolver.RangeLabel.
func RangeLabel(mode scheduler.Mode, now time.Time, view *time.Location, lang locale.Language) string {
	if view == nil {
		view = time.UTC
	}
	if mode == scheduler.ModeCalendar {
		local := now.In(view)
		return fmt.Sprintf("%s%s %d", calendarPrefix(lang), lang.MonthName(local.Month()), local.Year())
	}
	start := WeekStart(now, view)
	end := start.AddDays(6)
	return fmt.Sprintf("%s%s–%s", weekPrefix(lang), dayMonth(start, lang), dayMonth(end, lang))
}

func weekPrefix(lang locale.Language) string {
	switch lang {
	case locale.Romanian:
		return "Săptămâna: "
	case locale.Russian:
		return "Неделя: "
	default:
		return "Week: "
	}
}

func calendarPrefix(lang locale.Language) string {
	if lang == locale.Russian {
		return "Календарь: "
	}
	return "Calendar: "
}
