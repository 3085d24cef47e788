package store

import (
	"sort"
	"strings"
	"sync"
)

// TokenStore is synchronous, fire-and-forget key/value persistence.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Remove(key string)
	// RemoveMatching deletes every key starting with prefix. An empty prefix is
	// ignored rather than treated as "everything".
	RemoveMatching(prefix string)
}

// Keys is the storage layout used by the session controller.
type Keys struct {
	AccessToken  string
	RefreshToken string
	Identity     string
	RedirectHint string
	DraftPrefix  string
}

// DefaultKeys returns the key names used by the web client.
func DefaultKeys() Keys {
	return Keys{
		AccessToken:  "token",
		RefreshToken: "refreshToken",
		Identity:     "user",
		RedirectHint: "redirectAfterLogin",
		DraftPrefix:  "draft_",
	}
}

// Session returns the keys cleared together on logout, draft prefix excluded.
func (k Keys) Session() []string {
	return []string{k.AccessToken, k.RefreshToken, k.Identity, k.RedirectHint}
}

// DraftKey returns the storage key of a single draft.
func (k Keys) DraftKey(name string) string {
	return k.DraftPrefix + name
}

// MemoryStore is an in-process TokenStore. The zero value is ready to use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
}

func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *MemoryStore) RemoveMatching(prefix string) {
	if prefix == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
