// Package storage provides the persistent key-value cache backing the
// session: the auth token and the serialized user survive process restarts
// until they are explicitly cleared. The session manager is the only
// writer; other components may read the token to attach it to outgoing
// requests.
package storage

import "sync"

// Keys used by the session manager.
const (
	KeyAuthToken = "auth_token"
	KeyUser      = "user"
)

// Store is a small persistent key-value surface with localStorage
// semantics: missing keys read as absent, deletes are idempotent.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store, used in tests and as a fallback when no
// state directory is available.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
