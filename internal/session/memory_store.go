package session

import (
	"context"
	"sync"
	"time"

	"tidytab/internal/errors"
	"tidytab/ports"
)

// MemoryStore keeps session records in process memory
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]ports.SessionRecord
	now     func() time.Time
	clock   *VersionClock
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		records: make(map[string]ports.SessionRecord),
		now:     time.Now,
	}
	m.clock = NewVersionClock(func() time.Time { return m.now() })
	return m
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*ports.SessionRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok {
		return nil, false, nil
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	return &rec, true, nil
}

func (m *MemoryStore) Put(ctx context.Context, key string, payload []byte) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	version := m.clock.Next(m.records[key].Version)
	m.store(key, payload, version)
	return version, nil
}

func (m *MemoryStore) CompareAndSwap(ctx context.Context, key string, payload []byte, expectedVersion int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[key]
	if !ok || rec.Version != expectedVersion {
		return 0, errors.VersionConflict(key)
	}
	version := m.clock.Next(expectedVersion)
	m.store(key, payload, version)
	return version, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, key)
	return nil
}

func (m *MemoryStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-olderThan)
	removed := 0
	for key, rec := range m.records {
		if rec.UpdatedAt.Before(cutoff) {
			delete(m.records, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) store(key string, payload []byte, version int64) {
	m.records[key] = ports.SessionRecord{
		Key:       key,
		Payload:   append([]byte(nil), payload...),
		Version:   version,
		UpdatedAt: m.now(),
	}
}
