package internal

import (
	"context"
	"time"
)

type Mux interface {
	Get(platform string) (Platform, error)
}

// Platform opens a Provider on one calendar of an account.
type Platform interface {
	Provider(_ context.Context, _ *Account, calendarID string) (Provider, error)
}

// Provider is the calendar backend. Ids accepted by Event and PatchEvent may
// be either fully-qualified or bare.
type Provider interface {
	// UpdatedSince lists events modified after since, most recently updated
	// first, capped at max results.
	UpdatedSince(_ context.Context, since time.Time, max int) ([]*Event, error)
	// EventsBetween lists every event overlapping [from, to).
	EventsBetween(_ context.Context, from, to time.Time) ([]*Event, error)
	Event(_ context.Context, id string) (*Event, error)
	PatchEvent(_ context.Context, id string, _ *EventPatch) error
}

// Sleeper pauses between provider calls. Implementations must return early
// when the context is done.
type Sleeper func(context.Context, time.Duration) error

// Sleep is the production Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
