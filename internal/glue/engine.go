// Package glue keeps the events contained in a glue event moving with it.
//
// Every time a glue event is processed its current layout is saved as a
// Snapshot. When a later run sees the glue event start somewhere else, each
// remembered child is moved to the new start plus its recorded offset.
package glue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/guilherme-santos/gluecal/internal"
)

type Options struct {
	Keyword Keyword
	// Color is forced on every glue event.
	Color internal.Color
	// Throttle is the pause after provider writes that are followed by reads.
	Throttle time.Duration
}

type Engine struct {
	output   io.Writer
	provider internal.Provider
	store    *Store
	opts     Options

	// Sleep defaults to internal.Sleep.
	Sleep internal.Sleeper
}

func NewEngine(output io.Writer, provider internal.Provider, store *Store, opts Options) *Engine {
	if output == nil {
		output = os.Stdout
	}
	return &Engine{
		output:   output,
		provider: provider,
		store:    store,
		opts:     opts,
		Sleep:    internal.Sleep,
	}
}

// Match reports whether title belongs to a glue event.
func (e *Engine) Match(title string) bool {
	return e.opts.Keyword.Match(title)
}

// Sync processes one glue event: it normalizes its title and presentation,
// replays any drift since the last snapshot onto the remembered children and
// saves a fresh snapshot.
//
// Failures on the glue event itself or on single children are logged and
// reported in the returned error, but never stop the remaining steps.
// Snapshot I/O errors are only logged.
func (e *Engine) Sync(ctx context.Context, g *internal.Event) error {
	var errs []error

	wrote, err := e.normalize(ctx, g)
	if err != nil {
		errs = append(errs, err)
	}
	if wrote {
		if err := e.pause(ctx); err != nil {
			return err
		}
	}

	if snap, ok := e.store.Get(ctx, g.ID); !ok {
		logf(e.output, g, "First time seen, nothing to replay")
	} else if delta := g.StartsAt.Sub(snap.Anchor); delta == 0 {
		logf(e.output, g, "Not moved since %s", internal.FormatDateTime(snap.Anchor))
	} else {
		logf(e.output, g, "Moved by %s, replaying %d event(s)", delta, len(snap.Children))
		if err := e.pause(ctx); err != nil {
			return err
		}
		moved, err := e.replay(ctx, g, snap)
		if err != nil {
			errs = append(errs, err)
		}
		if moved > 0 {
			if err := e.pause(ctx); err != nil {
				return err
			}
		}
	}

	candidates, err := e.provider.EventsBetween(ctx, g.StartsAt, g.EndsAt)
	if err != nil {
		// Keeping the previous snapshot is safe: replay positions are absolute.
		logf(e.output, g, "Unable to list contained events, keeping previous snapshot: %v", err)
		return errors.Join(append(errs, err)...)
	}
	children := Contained(g, candidates)

	err = e.store.Put(ctx, g.ID, &Snapshot{
		Anchor:   g.StartsAt,
		Children: children,
	})
	if err != nil {
		logf(e.output, g, "Unable to save snapshot: %v", err)
	} else {
		logf(e.output, g, "Snapshot saved with %d contained event(s)", len(children))
	}
	return errors.Join(errs...)
}

// normalize rewrites the keyword casing in the title, forces the glue color
// and marks the event as free. It reports whether anything was written.
func (e *Engine) normalize(ctx context.Context, g *internal.Event) (bool, error) {
	var (
		wrote bool
		errs  []error
	)

	if title := e.opts.Keyword.Canonical(g.Title); title != g.Title {
		logf(e.output, g, "Renaming to %q", title)
		err := e.provider.PatchEvent(ctx, g.ID, &internal.EventPatch{Title: &title})
		if err != nil {
			logf(e.output, g, "Unable to rename: %v", err)
			errs = append(errs, fmt.Errorf("renaming %s: %w", g.ID, err))
		} else {
			g.Title = title
			wrote = true
		}
	}

	if g.Color != e.opts.Color || g.Transparency != internal.Transparent {
		color := e.opts.Color
		patch := &internal.EventPatch{
			Color:        &color,
			Transparency: internal.Transparent,
		}
		err := e.provider.PatchEvent(ctx, internal.BareID(g.ID), patch)
		if err != nil {
			logf(e.output, g, "Unable to set color and transparency: %v", err)
			errs = append(errs, fmt.Errorf("presenting %s: %w", g.ID, err))
		} else {
			patch.Apply(g)
			wrote = true
		}
	}
	return wrote, errors.Join(errs...)
}

// replay moves every child of snap to g's current start plus its offset.
// Children that can't be resolved or moved are skipped.
func (e *Engine) replay(ctx context.Context, g *internal.Event, snap *Snapshot) (int, error) {
	var (
		moved int
		errs  []error
	)
	for _, c := range snap.Children {
		if err := ctx.Err(); err != nil {
			return moved, err
		}

		child, err := e.provider.Event(ctx, c.ID)
		if err != nil {
			logf(e.output, g, "Could not find %q (%s), skipping: %v", c.Title, c.ID, err)
			continue
		}

		span := c.Span(g.StartsAt)
		if child.Span().Equal(span) {
			continue
		}
		logf(e.output, g, "Moving %q from %s to %s", c.Title, internal.FormatDateTime(child.StartsAt), internal.FormatDateTime(span.Start))

		err = e.provider.PatchEvent(ctx, c.ID, &internal.EventPatch{Span: &span})
		if err != nil {
			logf(e.output, g, "Unable to move %q (%s): %v", c.Title, c.ID, err)
			errs = append(errs, fmt.Errorf("moving %s: %w", c.ID, err))
			continue
		}
		moved++
	}
	return moved, errors.Join(errs...)
}

func (e *Engine) pause(ctx context.Context) error {
	return e.Sleep(ctx, e.opts.Throttle)
}

// Sweep syncs every non-recurring glue event between the first day of the
// month before now and the last day of the month after it.
func (e *Engine) Sweep(ctx context.Context, now time.Time) (int, error) {
	from := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month()+2, 0, 0, 0, 0, 0, now.Location())

	events, err := e.provider.EventsBetween(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("listing events between %s and %s: %w", internal.FormatDateTime(from), internal.FormatDateTime(to), err)
	}

	var (
		synced int
		errs   []error
	)
	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if ev.Recurring() || !e.Match(ev.Title) {
			continue
		}
		if err := e.Sync(ctx, ev); err != nil {
			errs = append(errs, err)
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

func logf(w io.Writer, event *internal.Event, format string, a ...any) {
	internal.Logf(w, "glue:", event, format, a...)
}
