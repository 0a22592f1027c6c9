package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/nodeops/internal/ports"
)

// SourceLookup is an in-memory ports.SourceLookup.
type SourceLookup struct {
	mu      sync.RWMutex
	sources map[string]ports.RegistrySource
	err     error
	calls   []string
}

// NewSourceLookup creates a SourceLookup holding sources.
func NewSourceLookup(sources ...ports.RegistrySource) *SourceLookup {
	m := &SourceLookup{sources: make(map[string]ports.RegistrySource)}
	for _, s := range sources {
		m.sources[s.Name] = s
	}
	return m
}

// SetError makes every lookup fail with err.
func (m *SourceLookup) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns the names looked up so far.
func (m *SourceLookup) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// FindSource returns the source registered under name.
func (m *SourceLookup) FindSource(_ context.Context, name string) (ports.RegistrySource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
	if m.err != nil {
		return ports.RegistrySource{}, m.err
	}
	s, ok := m.sources[name]
	if !ok {
		return ports.RegistrySource{}, ports.ErrSourceNotFound
	}
	return s, nil
}

// Ensure SourceLookup implements ports.SourceLookup.
var _ ports.SourceLookup = (*SourceLookup)(nil)
