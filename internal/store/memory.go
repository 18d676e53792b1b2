package store

import "sync"

// MemoryStore keeps settings in memory only. It backs tests and the degraded
// mode used when the settings database cannot be opened: preferences then
// reset to their defaults on every restart.
type MemoryStore struct {
	values sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	if value, ok := m.values.Load(key); ok {
		return value.(string), true, nil
	}
	return "", false, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.values.Store(key, value)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
