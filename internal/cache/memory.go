package cache

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	val []byte
	exp time.Time // zero: never
}

// MemoryBackend keeps values in process memory. Expired entries are dropped on
// read and by Sweep.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  Clock
}

func NewMemoryBackend(now Clock) *MemoryBackend {
	if now == nil {
		now = time.Now
	}
	return &MemoryBackend{data: map[string]memEntry{}, now: now}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if m.expired(e) {
		m.mu.Lock()
		if cur, ok := m.data[key]; ok && m.expired(cur) {
			delete(m.data, key)
		}
		m.mu.Unlock()
		return nil, ErrMiss
	}
	return append([]byte(nil), e.val...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	m.data[key] = m.entry(val, ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Add(_ context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.data[key]; ok && !m.expired(e) {
		return false, nil
	}
	m.data[key] = m.entry(val, ttl)
	return true, nil
}

func (m *MemoryBackend) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = map[string]memEntry{}
	m.mu.Unlock()
	return nil
}

// Sweep removes every expired entry and returns how many it dropped.
func (m *MemoryBackend) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.data {
		if m.expired(e) {
			delete(m.data, k)
			n++
		}
	}
	return n
}

// SweepHook runs Sweep after every sync cycle.
func (m *MemoryBackend) SweepHook() Hook {
	return func(context.Context, CycleReport) error {
		m.Sweep()
		return nil
	}
}

// Len counts stored entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryBackend) entry(val []byte, ttl time.Duration) memEntry {
	e := memEntry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = m.now().Add(ttl)
	}
	return e
}

func (m *MemoryBackend) expired(e memEntry) bool {
	return !e.exp.IsZero() && !m.now().Before(e.exp)
}
