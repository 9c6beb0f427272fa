package store

import (
	"context"
	"sync"

	"github.com/iwvelando/str-forecast/pkg/snapshot"
)

// Memory is a mutex-guarded in-process store.
type Memory struct {
	mu        sync.RWMutex
	snapshots map[string]snapshot.Snapshot
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{snapshots: make(map[string]snapshot.Snapshot)}
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, name string, s snapshot.Snapshot) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[name] = prepare(name, s)
	return nil
}

// LoadAll implements Store.
func (m *Memory) LoadAll(_ context.Context) ([]snapshot.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]snapshot.Snapshot, 0, len(m.snapshots))
	for name, s := range m.snapshots {
		out = append(out, prepare(name, s))
	}
	sortByName(out)
	return out, nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, name string) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, name)
	return nil
}

// Close implements Store.
func (m *Memory) Close(_ context.Context) error {
	return nil
}
