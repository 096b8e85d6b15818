package selection

import (
	"fmt"
	"strings"

	"github.com/example/availability-scheduler/internal/locale"
	"github.com/example/availability-scheduler/internal/scheduler"
	"github.com/example/availability-scheduler/internal/slottime"
)

// ListStyle selects how slot lines are enumerated.
type ListStyle int

const (
	// Numbered renders "1) ..." lines with a placeholder when empty.
	Numbered ListStyle = iota
	// Bulleted renders "• ..." lines.
	Bulleted
)

type templates struct {
	greeting  string
	preferred string
	nothing   string
	timezone  string
	closing   string
}

var messageTemplates = map[locale.Language]templates{
	locale.Romanian: {
		greeting:  "Bună! Aș dori să rezerv o sesiune.",
		preferred: "Intervale preferate:",
		nothing:   "(nimic selectat)",
		timezone:  "Fus orar: ",
		closing:   "Mulțumesc! Confirmă-mi te rog ce interval rămâne disponibil.",
	},
	locale.Russian: {
		greeting:  "Здравствуйте! Хочу записаться на занятие.",
		preferred: "Предпочтительные интервалы:",
		nothing:   "(ничего не выбрано)",
		timezone:  "Часовой пояс: ",
		closing:   "Спасибо! Подтвердите, пожалуйста, какой интервал остается свободным.",
	},
	locale.English: {
		greeting:  "Hi! I'd like to book a session.",
		preferred: "Preferred time options:",
		nothing:   "(nothing selected)",
		timezone:  "Timezone: ",
		closing:   "Thank you. Please confirm which interval is still available.",
	},
}

func templatesFor(lang locale.Language) templates {
	if tpl, ok := messageTemplates[lang]; ok {
		return tpl
	}
	return messageTemplates[locale.English]
}

// Message carries the content of a booking request.
type Message struct {
	Title      string
	RangeLabel string
	// Slots are the selected slots in selection order.
	Slots []scheduler.Slot
	// Fallback is listed instead of Slots when Slots is empty and the
	// preview option is set.
	Fallback []scheduler.Slot
}

type options struct {
	style   ListStyle
	preview bool
}

// Option customizes Compose.
type Option func(*options)

// WithStyle selects the list style.
func WithStyle(style ListStyle) Option {
	return func(o *options) { o.style = style }
}

// WithPreviewFallback lists Message.Fallback when nothing is selected. Used
// for the shareable preview text.
func WithPreviewFallback() Option {
	return func(o *options) { o.preview = true }
}

// Compose renders the booking request in the resolver's language. Slot lines
// use the resolver's zones and the disclosure line names the viewer zone.
func Compose(r *slottime.Resolver, msg Message, opts ...Option) string {
	cfg := options{style: Numbered}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	tpl := templatesFor(r.Language())
	slots := msg.Slots
	if len(slots) == 0 && cfg.preview {
		slots = msg.Fallback
	}

	var b strings.Builder
	b.WriteString(tpl.greeting)
	b.WriteString("\n\n")
	b.WriteString(msg.Title)
	b.WriteString("\n")
	b.WriteString(msg.RangeLabel)
	b.WriteString("\n")
	b.WriteString(tpl.preferred)
	b.WriteString("\n\n")
	b.WriteString(listLines(r, tpl, slots, cfg.style))
	b.WriteString("\n\n")
	b.WriteString(tpl.timezone)
	b.WriteString(r.ViewZone().String())
	b.WriteString("\n\n")
	b.WriteString(tpl.closing)
	return b.String()
}

// SlotLine renders one list entry: day label, range and slot label.
func SlotLine(r *slottime.Resolver, slot scheduler.Slot) string {
	d := r.Resolve(slot)
	return fmt.Sprintf("%s, %s — %s", d.DayLabel, d.Range, slot.Label)
}

func listLines(r *slottime.Resolver, tpl templates, slots []scheduler.Slot, style ListStyle) string {
	marker := func(i int) string {
		if style == Bulleted {
			return "• "
		}
		return fmt.Sprintf("%d) ", i+1)
	}
	if len(slots) == 0 {
		return marker(0) + tpl.nothing
	}
	lines := make([]string, 0, len(slots))
	for i, slot := range slots {
		lines = append(lines, marker(i)+SlotLine(r, slot))
	}
	return strings.Join(lines, "\n")
}
