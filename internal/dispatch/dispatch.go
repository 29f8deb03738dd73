// Package dispatch runs one pass over the recently changed events: glue
// events go to the glue engine, every other event through the prefix and
// meeting pipelines.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/guilherme-santos/gluecal/internal"
	"github.com/guilherme-santos/gluecal/internal/lock"
)

var ErrDispatching = errors.New("an error occurred while dispatching, check the logs")

type Locker interface {
	TryLock(_ context.Context, timeout time.Duration) error
	Locked() bool
	Unlock() error
}

type Source interface {
	Fetch(_ context.Context, window time.Duration) []*internal.Event
}

type Glue interface {
	Match(title string) bool
	Sync(context.Context, *internal.Event) error
}

type Classifier interface {
	PrefixPatch(*internal.Event) *internal.EventPatch
	MeetingPatch(*internal.Event) *internal.EventPatch
}

type Outcome int

const (
	// OutcomeLocked means another run held the lock; nothing was touched.
	OutcomeLocked Outcome = iota
	OutcomeCompleted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLocked:
		return "locked"
	case OutcomeCompleted:
		return "completed"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Summary describes a single run. Processed, Skipped and Failed partition
// the non-glue events; Failed also counts glue events that failed.
type Summary struct {
	RunID     string
	Outcome   Outcome
	Glue      int
	Processed int
	Skipped   int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%s: %d glue, %d processed, %d skipped, %d failed", s.Outcome, s.Glue, s.Processed, s.Skipped, s.Failed)
}

type Options struct {
	// LockTimeout must exceed the worst-case duration of one run.
	LockTimeout time.Duration
	// Window is how far back recently updated events are looked up.
	Window time.Duration
}

type Dispatcher struct {
	output     io.Writer
	lock       Locker
	source     Source
	glue       Glue
	classifier Classifier
	provider   internal.Provider
	opts       Options

	// NewRunID defaults to uuid.NewString.
	NewRunID func() string
}

func New(
	output io.Writer,
	locker Locker,
	source Source,
	glue Glue,
	classifier Classifier,
	provider internal.Provider,
	opts Options,
) *Dispatcher {
	if output == nil {
		output = os.Stdout
	}
	return &Dispatcher{
		output:     output,
		lock:       locker,
		source:     source,
		glue:       glue,
		classifier: classifier,
		provider:   provider,
		opts:       opts,
		NewRunID:   uuid.NewString,
	}
}

// Dispatch processes the recent events under the run lock. A busy lock is
// not an error: the summary's Outcome is OutcomeLocked. ErrDispatching is
// returned when some events failed.
func (d *Dispatcher) Dispatch(ctx context.Context) (sum Summary, err error) {
	sum.RunID = d.NewRunID()
	prefix := "dispatch " + sum.RunID + ":"

	err = d.lock.TryLock(ctx, d.opts.LockTimeout)
	if errors.Is(err, lock.ErrNotAcquired) {
		internal.Logf(d.output, prefix, nil, "Lock timeout, another run is likely in progress")
		return sum, nil
	}
	if err != nil {
		return sum, err
	}
	defer func() {
		if !d.lock.Locked() {
			return
		}
		if uerr := d.lock.Unlock(); uerr != nil {
			internal.Logf(d.output, prefix, nil, "Unable to release lock: %v", uerr)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			internal.Logf(d.output, prefix, nil, "Unexpected failure: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("dispatch: panic: %v", r)
		}
	}()

	sum.Outcome = OutcomeCompleted
	internal.Logf(d.output, prefix, nil, "Started")

	for _, e := range d.source.Fetch(ctx, d.opts.Window) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		if d.glue.Match(e.Title) {
			sum.Glue++
			if err := d.glue.Sync(ctx, e); err != nil {
				internal.Logf(d.output, prefix, e, "Glue sync failed: %v", err)
				sum.Failed++
			}
			continue
		}

		changed, err := d.process(ctx, prefix, e)
		switch {
		case err != nil:
			sum.Failed++
		case changed:
			sum.Processed++
		default:
			sum.Skipped++
		}
	}

	internal.Logf(d.output, prefix, nil, "Finished: %s", sum)
	if sum.Failed > 0 {
		return sum, ErrDispatching
	}
	return sum, nil
}

// process runs the prefix pipeline, then the meeting pipeline on the result.
func (d *Dispatcher) process(ctx context.Context, prefix string, e *internal.Event) (bool, error) {
	var changed bool

	if patch := d.classifier.PrefixPatch(e); patch != nil {
		if err := d.provider.PatchEvent(ctx, e.ID, patch); err != nil {
			internal.Logf(d.output, prefix, e, "Unable to apply prefix: %v", err)
			return changed, err
		}
		patch.Apply(e)
		changed = true
		internal.Logf(d.output, prefix, e, "Prefix applied, color %s", e.Color)
	}

	if patch := d.classifier.MeetingPatch(e); patch != nil {
		if err := d.provider.PatchEvent(ctx, e.ID, patch); err != nil {
			internal.Logf(d.output, prefix, e, "Unable to update meeting settings: %v", err)
			return changed, err
		}
		patch.Apply(e)
		changed = true
		internal.Logf(d.output, prefix, e, "Meeting settings updated, color %s, reminders %v", e.Color, e.Reminders)
	}
	return changed, nil
}
