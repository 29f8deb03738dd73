package recent

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilherme-santos/gluecal/internal"
	"github.com/guilherme-santos/gluecal/internal/calendartest"
)

var now = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func newSource(p internal.Provider, out *bytes.Buffer) *Source {
	s := New(out, p, 10)
	s.Now = func() time.Time { return now }
	return s
}

func TestFetch_FiltersRecurringAndOrders(t *testing.T) {
	p := calendartest.NewProvider(
		&internal.Event{ID: "old", Title: "old", UpdatedAt: now.Add(-time.Hour)},
		&internal.Event{ID: "a", Title: "a", UpdatedAt: now.Add(-3 * time.Minute)},
		&internal.Event{ID: "instance", Title: "instance", RecurringEventID: "series", UpdatedAt: now.Add(-time.Minute)},
		&internal.Event{ID: "series", Title: "series", Recurrence: []string{"RRULE:FREQ=DAILY"}, UpdatedAt: now.Add(-time.Minute)},
		&internal.Event{ID: "b", Title: "b", UpdatedAt: now.Add(-time.Minute)},
	)
	var out bytes.Buffer

	events := newSource(p, &out).Fetch(context.Background(), 10*time.Minute)

	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].ID)
	assert.Equal(t, "a", events[1].ID)
}

func TestFetch_ProviderErrorYieldsNothing(t *testing.T) {
	p := calendartest.NewProvider(&internal.Event{ID: "a", UpdatedAt: now})
	p.ListErr = errors.New("backend down")
	var out bytes.Buffer

	events := newSource(p, &out).Fetch(context.Background(), 10*time.Minute)

	assert.Empty(t, events)
	assert.Contains(t, out.String(), "backend down")
}

func TestFetch_CapsResults(t *testing.T) {
	p := calendartest.NewProvider()
	for i := 0; i < 20; i++ {
		p.Add(&internal.Event{ID: string(rune('a' + i)), UpdatedAt: now.Add(-time.Duration(i) * time.Second)})
	}
	var out bytes.Buffer

	events := newSource(p, &out).Fetch(context.Background(), time.Hour)

	require.Len(t, events, 10)
	assert.Equal(t, "a", events[0].ID)
}
