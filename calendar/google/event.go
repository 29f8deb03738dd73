package google

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/gluecal/internal"
)

const popupMethod = "popup"

func newEvent(item *calendar.Event) *internal.Event {
	e := &internal.Event{
		ID:               item.Id,
		Title:            item.Summary,
		Description:      item.Description,
		Location:         item.Location,
		Color:            internal.Color(item.ColorId),
		Transparency:     internal.Opaque,
		RecurringEventID: item.RecurringEventId,
		Recurrence:       item.Recurrence,
	}
	e.StartsAt, e.AllDay = parseDateTime(item.Start)
	e.EndsAt, _ = parseDateTime(item.End)
	e.UpdatedAt, _ = time.Parse(time.RFC3339, item.Updated)

	if item.Transparency == string(internal.Transparent) {
		e.Transparency = internal.Transparent
	}
	for _, a := range item.Attendees {
		if a.Resource {
			continue
		}
		e.Attendees = append(e.Attendees, a.Email)
	}
	if item.Reminders != nil {
		e.DefaultReminders = item.Reminders.UseDefault
		for _, r := range item.Reminders.Overrides {
			if r.Method == popupMethod {
				e.Reminders = append(e.Reminders, int(r.Minutes))
				continue
			}
			e.OtherReminders = append(e.OtherReminders, internal.Reminder{
				Method:  r.Method,
				Minutes: int(r.Minutes),
			})
		}
	}
	return e
}

// parseDateTime also reports whether dt is a whole-day date.
func parseDateTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, dt.DateTime)
		return t, false
	}
	t, _ := time.ParseInLocation(time.DateOnly, dt.Date, time.Local)
	return t, true
}

func newGooglePatch(p *internal.EventPatch) *calendar.Event {
	ev := &calendar.Event{}
	if p.Title != nil {
		ev.Summary = *p.Title
		ev.ForceSendFields = append(ev.ForceSendFields, "Summary")
	}
	if p.Color != nil {
		ev.ColorId = string(*p.Color)
		ev.ForceSendFields = append(ev.ForceSendFields, "ColorId")
	}
	if p.Transparency != "" {
		ev.Transparency = string(p.Transparency)
	}
	if p.Span != nil {
		ev.Start = &calendar.EventDateTime{DateTime: p.Span.Start.Format(time.RFC3339)}
		ev.End = &calendar.EventDateTime{DateTime: p.Span.End.Format(time.RFC3339)}
	}
	if p.Reminders != nil {
		overrides := make([]*calendar.EventReminder, 0, len(p.Reminders)+len(p.OtherReminders))
		for _, m := range p.Reminders {
			overrides = append(overrides, newReminder(popupMethod, m))
		}
		for _, r := range p.OtherReminders {
			overrides = append(overrides, newReminder(r.Method, r.Minutes))
		}
		ev.Reminders = &calendar.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault", "Overrides"},
		}
	}
	return ev
}

func newReminder(method string, minutes int) *calendar.EventReminder {
	return &calendar.EventReminder{
		Method:          method,
		Minutes:         int64(minutes),
		ForceSendFields: []string{"Minutes"},
	}
}
