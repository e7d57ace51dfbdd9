package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory journal store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	byID    map[string]int // id -> index into records
	nextSeq int64
	closed  bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]int),
		nextSeq: 1,
	}
}

// Append implements Store.
func (m *MemoryStore) Append(rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Time = rec.Time.UTC()
	if i, ok := m.byID[rec.ID]; ok {
		// Re-appending an ID replaces the record and moves it to the end.
		m.removeAt(i)
	}

	rec.Sequence = m.nextSeq
	m.nextSeq++
	m.byID[rec.ID] = len(m.records)
	m.records = append(m.records, rec)
	return rec, nil
}

// Get implements Store.
func (m *MemoryStore) Get(id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Record{}, ErrStoreClosed
	}

	i, ok := m.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return m.records[i], nil
}

// List implements Store.
func (m *MemoryStore) List(q Query) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	var out []Record
	for _, rec := range m.records {
		if q.matches(rec) {
			out = append(out, rec)
		}
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[len(out)-q.Limit:]
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrStoreClosed
	}
	return len(m.records), nil
}

// Prune implements Store.
func (m *MemoryStore) Prune(cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrStoreClosed
	}

	kept := m.records[:0]
	removed := 0
	for _, rec := range m.records {
		if rec.Time.Before(cutoff) {
			delete(m.byID, rec.ID)
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	m.reindex()
	return removed, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	m.byID = nil
	return nil
}

func (m *MemoryStore) removeAt(i int) {
	delete(m.byID, m.records[i].ID)
	m.records = append(m.records[:i], m.records[i+1:]...)
	m.reindex()
}

func (m *MemoryStore) reindex() {
	for i, rec := range m.records {
		m.byID[rec.ID] = i
	}
}
