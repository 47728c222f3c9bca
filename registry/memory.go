package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/openstudydata/ddiwalk/record"
)

// Memory is an in-process Registry used in tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	records map[string]*record.Record
}

// NewMemory creates an empty in-memory registry.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*record.Record)}
}

// Show returns the record stored under id, or ErrNotFound.
func (m *Memory) Show(_ context.Context, id string) (*record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

// Create stores a new record under its name.
func (m *Memory) Create(_ context.Context, rec *record.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Name]; ok {
		return "", fmt.Errorf("record %q already exists", rec.Name)
	}
	m.records[rec.Name] = rec.Clone()
	return rec.Name, nil
}

// Update replaces the record stored under rec's name.
func (m *Memory) Update(_ context.Context, rec *record.Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Name]; !ok {
		return "", ErrNotFound
	}
	m.records[rec.Name] = rec.Clone()
	return rec.Name, nil
}

// Len reports how many records are stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
