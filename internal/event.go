package internal

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned by a Provider when an event can't be resolved
// anymore, usually because it was deleted.
var ErrNotFound = errors.New("event not found")

// IDSuffix is the domain suffix carried by fully-qualified event ids.
const IDSuffix = "@google.com"

// BareID strips the domain suffix from a fully-qualified event id. The
// patch endpoint and the snapshot store are both keyed by the bare id.
func BareID(id string) string {
	return strings.TrimSuffix(id, IDSuffix)
}

type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Color       Color
	Attendees   []string
	// Reminders holds the lead-times, in minutes, of the popup reminders.
	Reminders []int
	// OtherReminders holds the reminders delivered some other way, by email
	// for instance.
	OtherReminders   []Reminder
	DefaultReminders bool
	AllDay           bool
	Transparency     Transparency
	// RecurringEventID is set on instances of a recurring series.
	RecurringEventID string
	Recurrence       []string
	UpdatedAt        time.Time
}

func (e Event) Span() Span {
	return Span{Start: e.StartsAt, End: e.EndsAt}
}

// Recurring reports whether e is an instance or the definition of a
// recurring series.
func (e Event) Recurring() bool {
	return e.RecurringEventID != "" || len(e.Recurrence) > 0
}

func (e Event) String() string {
	return e.Title + " (" + e.ID + ")"
}

// Span is a half-open time interval [Start, End).
type Span struct {
	Start time.Time
	End   time.Time
}

func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func (s Span) Equal(o Span) bool {
	return s.Start.Equal(o.Start) && s.End.Equal(o.End)
}

// Contains reports whether o fits inside s. Touching either boundary counts
// as contained.
func (s Span) Contains(o Span) bool {
	return !o.Start.Before(s.Start) && !o.End.After(s.End)
}

type Color string

func (c Color) String() string {
	if c == ColorDefault {
		return "default"
	}
	return string(c)
}

// Colors use the Google Calendar event palette ids.
const (
	ColorDefault   Color = ""
	ColorLavender  Color = "1"
	ColorSage      Color = "2"
	ColorGrape     Color = "3"
	ColorFlamingo  Color = "4"
	ColorBanana    Color = "5"
	ColorOrange    Color = "6"
	ColorPeacock   Color = "7"
	ColorGray      Color = "8"
	ColorBlueberry Color = "9"
	ColorBasil     Color = "10"
	ColorRed       Color = "11"
)

var colorNames = map[string]Color{
	"default":   ColorDefault,
	"lavender":  ColorLavender,
	"sage":      ColorSage,
	"grape":     ColorGrape,
	"flamingo":  ColorFlamingo,
	"banana":    ColorBanana,
	"orange":    ColorOrange,
	"peacock":   ColorPeacock,
	"gray":      ColorGray,
	"blueberry": ColorBlueberry,
	"basil":     ColorBasil,
	"red":       ColorRed,
}

// ParseColor accepts either a palette name ("orange") or a palette id ("6").
func ParseColor(v string) (Color, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := colorNames[v]; ok {
		return c, true
	}
	for _, c := range colorNames {
		if string(c) == v {
			return c, true
		}
	}
	return ColorDefault, false
}

type Reminder struct {
	Method  string
	Minutes int
}

type Transparency string

const (
	Opaque      Transparency = "opaque"
	Transparent Transparency = "transparent"
)

// EventPatch describes a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title        *string
	Color        *Color
	Transparency Transparency
	Span         *Span
	// Reminders, when non-nil, replaces every reminder of the event with
	// these popups plus OtherReminders, and disables the calendar defaults.
	// An empty slice with no OtherReminders removes every reminder.
	Reminders      []int
	OtherReminders []Reminder
}

func (p EventPatch) Empty() bool {
	return p.Title == nil && p.Color == nil && p.Transparency == "" && p.Span == nil && p.Reminders == nil
}

// Apply copies the patched fields onto e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Transparency != "" {
		e.Transparency = p.Transparency
	}
	if p.Span != nil {
		e.StartsAt = p.Span.Start
		e.EndsAt = p.Span.End
	}
	if p.Reminders != nil {
		e.Reminders = append([]int{}, p.Reminders...)
		e.OtherReminders = append([]Reminder(nil), p.OtherReminders...)
		e.DefaultReminders = false
	}
}
