package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is an in-process Store used when no database is configured and in
// tests. Entries are evicted lazily on access.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]map[string]memoryEntry
	now     func() time.Time
}

// NewMemory builds an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, namespace, identifier string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[namespace][identifier]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries[namespace], identifier)
		m.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

func (m *Memory) Set(_ context.Context, namespace, identifier string, payload []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[namespace] == nil {
		m.entries[namespace] = make(map[string]memoryEntry)
	}
	m.entries[namespace][identifier] = memoryEntry{
		payload:   payload,
		expiresAt: m.now().Add(ttl),
	}
	return true
}

func (m *Memory) Exists(ctx context.Context, namespace, identifier string) bool {
	_, ok := m.Get(ctx, namespace, identifier)
	return ok
}

func (m *Memory) RemainingTTL(_ context.Context, namespace, identifier string) time.Duration {
	m.mu.RLock()
	entry, ok := m.entries[namespace][identifier]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	remaining := entry.expiresAt.Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Memory) Delete(_ context.Context, namespace, identifier string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[namespace][identifier]; !ok {
		return false
	}
	delete(m.entries[namespace], identifier)
	return true
}

func (m *Memory) InvalidateNamespace(_ context.Context, namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries[namespace])
	delete(m.entries, namespace)
	return n
}
