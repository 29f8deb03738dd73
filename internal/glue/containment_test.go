package glue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/guilherme-santos/gluecal/internal"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 4, hour, min, 0, 0, time.UTC)
}

func event(id string, start, end time.Time) *internal.Event {
	return &internal.Event{ID: id, Title: id, StartsAt: start, EndsAt: end}
}

func TestContained(t *testing.T) {
	g := event("glue", at(10, 0), at(11, 0))
	a := event("A", at(10, 0), at(10, 30))
	b := event("B", at(10, 30), at(11, 0))
	c := event("C", at(9, 55), at(10, 30))
	d := event("D", at(10, 0), at(11, 0))
	d.AllDay = true
	e := event("E", at(10, 45), at(11, 15))
	nested := event("other glue", at(10, 10), at(10, 20))

	children := Contained(g, []*internal.Event{g, a, b, c, d, e, nested})

	assert.Equal(t, []Child{
		{ID: "A", Title: "A", Offset: 0, Duration: 30 * time.Minute},
		{ID: "B", Title: "B", Offset: 30 * time.Minute, Duration: 30 * time.Minute},
		{ID: "other glue", Title: "other glue", Offset: 10 * time.Minute, Duration: 10 * time.Minute},
	}, children)
}

func TestContained_SkipsSelfByBareID(t *testing.T) {
	g := event("glue@google.com", at(10, 0), at(11, 0))
	self := event("glue", at(10, 0), at(11, 0))

	assert.Empty(t, Contained(g, []*internal.Event{self}))
}

func TestContained_Empty(t *testing.T) {
	g := event("glue", at(10, 0), at(11, 0))

	children := Contained(g, nil)
	assert.NotNil(t, children)
	assert.Empty(t, children)
}
