package history

import "sync"

// MemoryStore is an in-memory history store.
// Entries are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	order   []string // run ids, oldest first
	entries map[string]Entry
	closed  bool
}

// NewMemoryStore creates a new in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(entry Entry) error {
	entry, err := prepare(entry)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if _, ok := m.entries[entry.RunID]; !ok {
		m.order = append(m.order, entry.RunID)
	}
	m.entries[entry.RunID] = entry
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(runID string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}
	entry, ok := m.entries[runID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// List implements Store.
func (m *MemoryStore) List(limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	n := len(m.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, 0, n)
	for i := len(m.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.entries[m.order[i]])
	}
	return out, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}
	if _, ok := m.entries[runID]; !ok {
		return nil
	}
	delete(m.entries, runID)
	for i, id := range m.order {
		if id == runID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	m.order = nil
	return nil
}
