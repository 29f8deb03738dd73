package glue

import (
	"github.com/guilherme-santos/gluecal/internal"
)

// Contained returns, in candidate order, the events fully inside glue's
// span. The glue event itself and all-day events are never children. Other
// glue events are treated like any other event.
func Contained(glue *internal.Event, candidates []*internal.Event) []Child {
	span := glue.Span()
	glueID := internal.BareID(glue.ID)

	children := []Child{}
	for _, e := range candidates {
		if internal.BareID(e.ID) == glueID || e.AllDay {
			continue
		}
		if !span.Contains(e.Span()) {
			continue
		}
		children = append(children, Child{
			ID:       e.ID,
			Title:    e.Title,
			Offset:   e.StartsAt.Sub(span.Start),
			Duration: e.Span().Duration(),
		})
	}
	return children
}
