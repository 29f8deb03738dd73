// Package classify decides, from a single event's fields, whether it carries
// a color prefix and whether it looks like a meeting. It also turns those
// decisions into idempotent patches.
package classify

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/guilherme-santos/gluecal/internal"
)

type Rules struct {
	// Prefixes maps a two-character title prefix, matched ignoring case, to
	// the color the event gets once the prefix is removed.
	Prefixes         map[string]internal.Color
	MeetingKeywords  []string
	MeetingPlatforms []string
	MeetingColor     internal.Color
	ReminderMinutes  int
}

type Classifier struct {
	prefixes  map[string]internal.Color
	keywords  []string
	platforms []string
	color     internal.Color
	reminder  int
}

func New(r Rules) *Classifier {
	c := &Classifier{
		prefixes: make(map[string]internal.Color, len(r.Prefixes)),
		color:    r.MeetingColor,
		reminder: r.ReminderMinutes,
	}
	for p, color := range r.Prefixes {
		c.prefixes[fold(p)] = color
	}
	for _, k := range r.MeetingKeywords {
		c.keywords = append(c.keywords, fold(k))
	}
	for _, p := range r.MeetingPlatforms {
		c.platforms = append(c.platforms, fold(p))
	}
	return c
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

type Prefix struct {
	Color internal.Color
	// Title is the title without the prefix and surrounding whitespace.
	Title string
}

// Prefix reports whether title starts with one of the recognized prefixes.
func (c *Classifier) Prefix(title string) (Prefix, bool) {
	runes := []rune(title)
	if len(runes) < 2 {
		return Prefix{}, false
	}
	color, ok := c.prefixes[fold(string(runes[:2]))]
	if !ok {
		return Prefix{}, false
	}
	return Prefix{
		Color: color,
		Title: strings.TrimSpace(string(runes[2:])),
	}, true
}

// IsMeeting is true when any signal fires: a keyword in the title, a meeting
// platform in the description or location, at least one attendee, or the
// event already having the meeting color.
func (c *Classifier) IsMeeting(e *internal.Event) bool {
	title := fold(e.Title)
	for _, k := range c.keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	desc, loc := fold(e.Description), fold(e.Location)
	for _, p := range c.platforms {
		if strings.Contains(desc, p) || strings.Contains(loc, p) {
			return true
		}
	}
	return len(e.Attendees) > 0 || e.Color == c.color
}

// PrefixPatch returns the patch that colors e and removes its prefix, or nil
// when there's nothing to do.
func (c *Classifier) PrefixPatch(e *internal.Event) *internal.EventPatch {
	p, ok := c.Prefix(e.Title)
	if !ok {
		return nil
	}
	patch := new(internal.EventPatch)
	if e.Color != p.Color {
		patch.Color = &p.Color
	}
	if e.Title != p.Title {
		patch.Title = &p.Title
	}
	if patch.Empty() {
		return nil
	}
	return patch
}

// MeetingPatch returns the patch that normalizes color and reminders, or nil
// when e already matches. Meetings get the meeting color and, when they have
// no popup reminder, a single one added next to their other reminders. Every
// other event loses all its reminders.
func (c *Classifier) MeetingPatch(e *internal.Event) *internal.EventPatch {
	patch := new(internal.EventPatch)

	if c.IsMeeting(e) {
		if e.Color != c.color {
			color := c.color
			patch.Color = &color
		}
		if len(e.Reminders) == 0 {
			patch.Reminders = []int{c.reminder}
			patch.OtherReminders = e.OtherReminders
		}
	} else if len(e.Reminders) > 0 || len(e.OtherReminders) > 0 || e.DefaultReminders {
		patch.Reminders = []int{}
	}

	if patch.Empty() {
		return nil
	}
	return patch
}
