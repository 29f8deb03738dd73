// Package recent lists the events changed within a short trailing window.
package recent

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"github.com/guilherme-santos/gluecal/internal"
)

type Source struct {
	output   io.Writer
	provider internal.Provider
	max      int

	// Now defaults to time.Now.
	Now func() time.Time
}

func New(output io.Writer, provider internal.Provider, maxResults int) *Source {
	if output == nil {
		output = os.Stdout
	}
	return &Source{
		output:   output,
		provider: provider,
		max:      maxResults,
		Now:      time.Now,
	}
}

// Fetch returns the non-recurring events updated within window, most recently
// updated first. Provider failures are logged and yield no events.
func (s *Source) Fetch(ctx context.Context, window time.Duration) []*internal.Event {
	since := s.Now().Add(-window)

	events, err := s.provider.UpdatedSince(ctx, since, s.max)
	if err != nil {
		logf(s.output, "Unable to list events updated since %s: %v", internal.FormatDateTime(since), err)
		return nil
	}

	res := make([]*internal.Event, 0, len(events))
	for _, e := range events {
		if e.Recurring() {
			continue
		}
		res = append(res, e)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})

	logf(s.output, "%d event(s) updated since %s, %d non-recurring", len(events), internal.FormatDateTime(since), len(res))
	return res
}

func logf(w io.Writer, format string, a ...any) {
	internal.Logf(w, "recent:", nil, format, a...)
}
