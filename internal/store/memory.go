package store

import (
	"context"
	"sync"

	"liveattendance/internal/attendance"
)

// Memory keeps records in process. Used by tests and local runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string]attendance.Record
	writes  int
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]attendance.Record)}
}

func (m *Memory) Write(ctx context.Context, collection, key string, rec attendance.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[attendance.Path(collection, key)] = rec
	m.writes++
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, attendance.Path(collection, key))
	return nil
}

// Get returns the record stored at collection/key.
func (m *Memory) Get(collection, key string) (attendance.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[attendance.Path(collection, key)]
	return rec, ok
}

// Len is the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Writes counts successful Write calls, including overwrites.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func (m *Memory) Close() error { return nil }
