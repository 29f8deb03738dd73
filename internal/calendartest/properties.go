package calendartest

import (
	"context"
	"maps"
	"sync"
)

// Properties is an in-memory property store.
type Properties struct {
	mu    sync.Mutex
	props map[string]string

	// Err fails every call when set.
	Err error
}

func NewProperties() *Properties {
	return &Properties{props: make(map[string]string)}
}

func (p *Properties) Property(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return "", false, p.Err
	}
	v, ok := p.props[key]
	return v, ok, nil
}

func (p *Properties) SetProperty(_ context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	p.props[key] = value
	return nil
}

func (p *Properties) Properties(context.Context) (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	return maps.Clone(p.props), nil
}

func (p *Properties) DeleteAllProperties(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return p.Err
	}
	clear(p.props)
	return nil
}
