package storage

import (
	"sort"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Useful for tests and
// ephemeral sessions.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) Get(namespace, key string) ([]byte, error) {
	if err := validateKey(namespace, key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[namespace][key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryStore) Set(namespace, key string, value []byte) error {
	if err := validateKey(namespace, key); err != nil {
		return err
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[namespace]
	if !ok {
		bucket = make(map[string][]byte)
		m.data[namespace] = bucket
	}
	bucket[key] = stored
	return nil
}

func (m *MemoryStore) Delete(namespace, key string) error {
	if err := validateKey(namespace, key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[namespace], key)
	return nil
}

func (m *MemoryStore) Keys(namespace string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data[namespace]))
	for key := range m.data[namespace] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error { return nil }
