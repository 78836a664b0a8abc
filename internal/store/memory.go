package store

import (
	"context"

	"github.com/ldaputil/ldifdiff/internal/ldif"
)

// Memory is a map-backed Snapshot for originals that fit in RAM.
type Memory struct {
	entries map[string]*ldif.Entry
	order   []string // insertion order, for deterministic iteration
}

var _ Snapshot = (*Memory)(nil)

// NewMemory creates an empty in-memory snapshot store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*ldif.Entry)}
}

// Put stores a copy of entry under id, overwriting any previous entry.
func (m *Memory) Put(_ context.Context, id string, entry *ldif.Entry) error {
	if _, exists := m.entries[id]; !exists {
		m.order = append(m.order, id)
	}
	m.entries[id] = entry.Clone()
	return nil
}

// Get returns the entry stored under id, if any.
func (m *Memory) Get(_ context.Context, id string) (*ldif.Entry, bool, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, false, nil
	}
	return entry, true, nil
}

// Delete removes the entry stored under id. Deleting an absent id is not
// an error.
func (m *Memory) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// Len returns the number of entries currently stored.
func (m *Memory) Len(_ context.Context) (int, error) {
	return len(m.entries), nil
}

// Iterate visits remaining entries in insertion order.
func (m *Memory) Iterate(_ context.Context, fn func(id string, entry *ldif.Entry) error) error {
	for _, id := range m.order {
		entry, ok := m.entries[id]
		if !ok {
			continue // deleted since insertion
		}
		if err := fn(id, entry); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops all entries.
func (m *Memory) Clear(_ context.Context) error {
	m.entries = make(map[string]*ldif.Entry)
	m.order = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
