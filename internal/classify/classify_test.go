package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/gluecal/internal"
)

func newClassifier() *Classifier {
	return New(Rules{
		Prefixes: map[string]internal.Color{
			"o ": internal.ColorOrange,
			"R ": internal.ColorRed,
		},
		MeetingKeywords:  []string{"meet", "call"},
		MeetingPlatforms: []string{"zoom.us", "meet.google.com"},
		MeetingColor:     internal.ColorRed,
		ReminderMinutes:  3,
	})
}

func TestPrefix(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		title string
		ok    bool
		color internal.Color
		want  string
	}{
		{title: "o Groceries", ok: true, color: internal.ColorOrange, want: "Groceries"},
		{title: "O   Groceries  ", ok: true, color: internal.ColorOrange, want: "Groceries"},
		{title: "r dentist", ok: true, color: internal.ColorRed, want: "dentist"},
		{title: "r ", ok: true, color: internal.ColorRed, want: ""},
		{title: "oGroceries", ok: false},
		{title: "x Groceries", ok: false},
		{title: "o", ok: false},
		{title: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			p, ok := c.Prefix(tt.title)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.color, p.Color)
			assert.Equal(t, tt.want, p.Title)
		})
	}
}

func TestPrefixPatch_Idempotent(t *testing.T) {
	c := newClassifier()
	e := &internal.Event{ID: "1", Title: "o Groceries"}

	patch := c.PrefixPatch(e)
	require.NotNil(t, patch)
	require.NotNil(t, patch.Title)
	require.NotNil(t, patch.Color)
	assert.Equal(t, "Groceries", *patch.Title)
	assert.Equal(t, internal.ColorOrange, *patch.Color)

	patch.Apply(e)
	assert.Nil(t, c.PrefixPatch(e), "second pass must be a no-op")
}

func TestIsMeeting(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		name  string
		event internal.Event
		want  bool
	}{
		{name: "keyword in title", event: internal.Event{Title: "Weekly MEETING"}, want: true},
		{name: "keyword as substring", event: internal.Event{Title: "Recall dentist"}, want: true},
		{name: "platform in description", event: internal.Event{Title: "Sync", Description: "https://Zoom.us/j/123"}, want: true},
		{name: "platform in location", event: internal.Event{Title: "Sync", Location: "meet.google.com/abc"}, want: true},
		{name: "has attendees", event: internal.Event{Title: "Lunch", Attendees: []string{"a@example.com"}}, want: true},
		{name: "already meeting color", event: internal.Event{Title: "Lunch", Color: internal.ColorRed}, want: true},
		{name: "nothing", event: internal.Event{Title: "Lunch", Color: internal.ColorOrange}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsMeeting(&tt.event))
		})
	}
}

func TestMeetingPatch_Meeting(t *testing.T) {
	c := newClassifier()
	e := &internal.Event{ID: "1", Title: "Call with Ana", DefaultReminders: true}

	patch := c.MeetingPatch(e)
	require.NotNil(t, patch)
	require.NotNil(t, patch.Color)
	assert.Equal(t, internal.ColorRed, *patch.Color)
	assert.Equal(t, []int{3}, patch.Reminders)

	patch.Apply(e)
	assert.Nil(t, c.MeetingPatch(e), "second pass must be a no-op")
	assert.Equal(t, []int{3}, e.Reminders)
}

func TestMeetingPatch_KeepsExistingReminders(t *testing.T) {
	c := newClassifier()
	e := &internal.Event{ID: "1", Title: "Call", Color: internal.ColorRed, Reminders: []int{10}}

	assert.Nil(t, c.MeetingPatch(e))
}

func TestMeetingPatch_NotMeetingClearsReminders(t *testing.T) {
	c := newClassifier()
	e := &internal.Event{ID: "1", Title: "Lunch", Reminders: []int{10, 30}}

	patch := c.MeetingPatch(e)
	require.NotNil(t, patch)
	assert.Nil(t, patch.Color)
	assert.NotNil(t, patch.Reminders)
	assert.Empty(t, patch.Reminders)

	patch.Apply(e)
	assert.Nil(t, c.MeetingPatch(e))
}

func TestMeetingPatch_AfterRedPrefix(t *testing.T) {
	c := newClassifier()
	e := &internal.Event{ID: "1", Title: "r Dentist"}

	c.PrefixPatch(e).Apply(e)
	assert.True(t, c.IsMeeting(e), "red prefix makes the event a meeting")

	patch := c.MeetingPatch(e)
	require.NotNil(t, patch)
	assert.Nil(t, patch.Color)
	assert.Equal(t, []int{3}, patch.Reminders)
}

func TestMeetingPatch_KeepsOtherReminders(t *testing.T) {
	c := newClassifier()
	email := internal.Reminder{Method: "email", Minutes: 60}
	e := &internal.Event{ID: "1", Title: "Call", Color: internal.ColorRed, OtherReminders: []internal.Reminder{email}}

	patch := c.MeetingPatch(e)
	require.NotNil(t, patch)
	assert.Equal(t, []int{3}, patch.Reminders)
	assert.Equal(t, []internal.Reminder{email}, patch.OtherReminders)

	patch.Apply(e)
	assert.Equal(t, []internal.Reminder{email}, e.OtherReminders)
	assert.Nil(t, c.MeetingPatch(e))
}

func TestMeetingPatch_NotMeetingClearsOtherReminders(t *testing.T) {
	c := newClassifier()
	e := &internal.Event{ID: "1", Title: "Lunch", OtherReminders: []internal.Reminder{{Method: "email", Minutes: 60}}}

	patch := c.MeetingPatch(e)
	require.NotNil(t, patch)
	assert.Empty(t, patch.Reminders)
	assert.Empty(t, patch.OtherReminders)

	patch.Apply(e)
	assert.Empty(t, e.OtherReminders)
	assert.Nil(t, c.MeetingPatch(e))
}
