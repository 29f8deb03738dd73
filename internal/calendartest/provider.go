// Package calendartest provides an in-memory internal.Provider for tests.
package calendartest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/guilherme-santos/gluecal/internal"
)

// Patch is a recorded PatchEvent call. ID is exactly what the caller passed.
type Patch struct {
	ID    string
	Patch internal.EventPatch
}

type Provider struct {
	mu      sync.Mutex
	events  map[string]*internal.Event
	order   []string
	patches []Patch

	// ListErr is returned by UpdatedSince and EventsBetween when set.
	ListErr error
	// GetErr and PatchErr fail calls for a given bare id.
	GetErr   map[string]error
	PatchErr map[string]error
	// Now stamps UpdatedAt on patched events. Defaults to time.Now.
	Now func() time.Time
}

func NewProvider(events ...*internal.Event) *Provider {
	p := &Provider{
		events:   make(map[string]*internal.Event),
		GetErr:   make(map[string]error),
		PatchErr: make(map[string]error),
		Now:      time.Now,
	}
	for _, e := range events {
		p.Add(e)
	}
	return p
}

// Add stores a copy of e.
func (p *Provider) Add(e *internal.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := internal.BareID(e.ID)
	if _, ok := p.events[id]; !ok {
		p.order = append(p.order, id)
	}
	p.events[id] = clone(e)
}

// Delete removes the event, simulating a deletion on the calendar.
func (p *Provider) Delete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.events, internal.BareID(id))
}

// Get returns a copy of the stored event, or nil.
func (p *Provider) Get(id string) *internal.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.events[internal.BareID(id)]
	if !ok {
		return nil
	}
	return clone(e)
}

// Patches returns every PatchEvent call in order.
func (p *Provider) Patches() []Patch {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Patch(nil), p.patches...)
}

// PatchesFor returns the PatchEvent calls made for one event.
func (p *Provider) PatchesFor(id string) []Patch {
	var res []Patch
	for _, patch := range p.Patches() {
		if internal.BareID(patch.ID) == internal.BareID(id) {
			res = append(res, patch)
		}
	}
	return res
}

func (p *Provider) UpdatedSince(_ context.Context, since time.Time, max int) ([]*internal.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ListErr != nil {
		return nil, p.ListErr
	}
	var res []*internal.Event
	for _, id := range p.order {
		e, ok := p.events[id]
		if !ok || !e.UpdatedAt.After(since) {
			continue
		}
		res = append(res, clone(e))
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})
	if max > 0 && len(res) > max {
		res = res[:max]
	}
	return res, nil
}

func (p *Provider) EventsBetween(_ context.Context, from, to time.Time) ([]*internal.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ListErr != nil {
		return nil, p.ListErr
	}
	var res []*internal.Event
	for _, id := range p.order {
		e, ok := p.events[id]
		if !ok {
			continue
		}
		if e.StartsAt.Before(to) && e.EndsAt.After(from) {
			res = append(res, clone(e))
		}
	}
	return res, nil
}

func (p *Provider) Event(_ context.Context, id string) (*internal.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id = internal.BareID(id)
	if err := p.GetErr[id]; err != nil {
		return nil, err
	}
	e, ok := p.events[id]
	if !ok {
		return nil, fmt.Errorf("calendartest: %s: %w", id, internal.ErrNotFound)
	}
	return clone(e), nil
}

func (p *Provider) PatchEvent(_ context.Context, id string, patch *internal.EventPatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.patches = append(p.patches, Patch{ID: id, Patch: *patch})
	id = internal.BareID(id)

	if err := p.PatchErr[id]; err != nil {
		return err
	}
	e, ok := p.events[id]
	if !ok {
		return fmt.Errorf("calendartest: %s: %w", id, internal.ErrNotFound)
	}
	patch.Apply(e)
	e.UpdatedAt = p.Now()
	return nil
}

func clone(e *internal.Event) *internal.Event {
	c := *e
	c.Attendees = append([]string(nil), e.Attendees...)
	c.Reminders = append([]int(nil), e.Reminders...)
	c.OtherReminders = append([]internal.Reminder(nil), e.OtherReminders...)
	c.Recurrence = append([]string(nil), e.Recurrence...)
	return &c
}
