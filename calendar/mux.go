package calendar

import (
	"fmt"
	"sync"

	"github.com/guilherme-santos/gluecal/internal"
)

type Mux struct {
	mu        sync.Mutex
	platforms map[string]internal.Platform
}

func NewMux() *Mux {
	return &Mux{
		platforms: make(map[string]internal.Platform),
	}
}

func (m *Mux) Get(platform string) (internal.Platform, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.platforms[platform]
	if !ok {
		return nil, fmt.Errorf("calendar %q is not implemented", platform)
	}
	return p, nil
}

func (m *Mux) Register(platform string, p internal.Platform) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.platforms[platform] = p
}
