// Package memory holds per-agent state that outlives a creep: the working
// flag that toggles an agent between collecting and delivering.
// Entries are keyed by the stable agent name, never by the creep ID.
package memory

import (
	"sort"
	"sync"
)

// Store is the persisted working-flag store.
type Store interface {
	// Working returns the flag and whether it was ever set.
	Working(name string) (working bool, ok bool)
	SetWorking(name string, working bool)
}

// Map is an in-process Store. It is safe for concurrent use so that the
// API and the save hook can read it while the tick loop writes.
type Map struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// NewMap creates an empty store.
func NewMap() *Map {
	return &Map{flags: make(map[string]bool)}
}

func (m *Map) Working(name string) (bool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.flags[name]
	return w, ok
}

func (m *Map) SetWorking(name string, working bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[name] = working
}

// Forget drops the entry for name.
func (m *Map) Forget(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.flags, name)
}

// Snapshot returns a copy of every flag.
func (m *Map) Snapshot() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Restore replaces the store contents, e.g. after loading from disk.
func (m *Map) Restore(flags map[string]bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags = make(map[string]bool, len(flags))
	for k, v := range flags {
		m.flags[k] = v
	}
}

// Names returns the agent names with a flag, sorted.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.flags))
	for k := range m.flags {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
