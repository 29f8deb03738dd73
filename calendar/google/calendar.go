package google

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilherme-santos/gluecal/internal"
)

// Calendar is the internal.Provider for a single Google calendar.
type Calendar struct {
	svc    *calendar.Service
	id     string
	output io.Writer

	Verbose bool
	// RetrySleep is the pause before retrying a rate limited call.
	RetrySleep time.Duration
	Sleep      internal.Sleeper
}

func NewCalendar(output io.Writer, svc *calendar.Service, calendarID string) *Calendar {
	if output == nil {
		output = os.Stdout
	}
	return &Calendar{
		svc:        svc,
		id:         calendarID,
		output:     output,
		RetrySleep: defaultSleep,
		Sleep:      internal.Sleep,
	}
}

func (c *Calendar) UpdatedSince(ctx context.Context, since time.Time, max int) ([]*internal.Event, error) {
	call := c.svc.Events.
		List(c.id).
		Context(ctx).
		UpdatedMin(since.UTC().Format(time.RFC3339)).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("updated").
		MaxResults(pageSize)

	events, err := c.list(ctx, call)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].UpdatedAt.After(events[j].UpdatedAt)
	})
	if max > 0 && len(events) > max {
		events = events[:max]
	}
	c.logf(nil, "%d event(s) updated since %s", len(events), internal.FormatDateTime(since))
	return events, nil
}

func (c *Calendar) EventsBetween(ctx context.Context, from, to time.Time) ([]*internal.Event, error) {
	call := c.svc.Events.
		List(c.id).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		ShowDeleted(false).
		SingleEvents(true).
		MaxResults(pageSize)

	events, err := c.list(ctx, call)
	if err != nil {
		return nil, err
	}
	c.logf(nil, "%d event(s) between %s and %s", len(events), internal.FormatDateTime(from), internal.FormatDateTime(to))
	return events, nil
}

func (c *Calendar) list(ctx context.Context, call *calendar.EventsListCall) ([]*internal.Event, error) {
	var (
		res           []*internal.Event
		nextPageToken string
	)
	for {
		var page *calendar.Events
		err := c.retry(ctx, func() (err error) {
			page, err = call.PageToken(nextPageToken).Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("google: listing events: %w", err)
		}

		for _, item := range page.Items {
			if item.Status == "cancelled" {
				continue
			}
			res = append(res, newEvent(item))
		}
		nextPageToken = page.NextPageToken
		if nextPageToken == "" {
			break
		}
	}
	return res, nil
}

func (c *Calendar) Event(ctx context.Context, id string) (*internal.Event, error) {
	id = internal.BareID(id)

	var item *calendar.Event
	err := c.retry(ctx, func() (err error) {
		item, err = c.svc.Events.Get(c.id, id).Context(ctx).Do()
		return err
	})
	if notFound(err) {
		return nil, fmt.Errorf("google: %s: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("google: getting event %s: %w", id, err)
	}
	if item.Status == "cancelled" {
		return nil, fmt.Errorf("google: %s: %w", id, internal.ErrNotFound)
	}
	return newEvent(item), nil
}

func (c *Calendar) PatchEvent(ctx context.Context, id string, patch *internal.EventPatch) error {
	id = internal.BareID(id)
	msg := fmt.Sprintf("patching event %s... ", id)
	defer func() {
		c.logf(nil, "%s", msg)
	}()

	err := c.retry(ctx, func() error {
		_, err := c.svc.Events.Patch(c.id, id, newGooglePatch(patch)).Context(ctx).Do()
		return err
	})
	if notFound(err) {
		msg += "❌"
		return fmt.Errorf("google: %s: %w", id, internal.ErrNotFound)
	}
	if err != nil {
		msg += "❌"
		return fmt.Errorf("google: patching event %s: %w", id, err)
	}
	msg += "✅"
	return nil
}

func (c *Calendar) retry(ctx context.Context, fn func() error) error {
	for {
		err := fn()
		if err == nil || !shouldRetry(err) {
			return err
		}
		c.logf(nil, "rate limit exceeded, retrying in %s", c.RetrySleep)
		if err := c.Sleep(ctx, c.RetrySleep); err != nil {
			return err
		}
	}
}

func (c *Calendar) logf(event *internal.Event, format string, a ...any) {
	if c.Verbose {
		internal.Logf(c.output, "google:", event, format, a...)
	}
}
