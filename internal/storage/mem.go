package storage

import (
	"bytes"
	"io"
	"sync"
)

// MemStore keeps blobs in memory. Used when no export directory is configured and in tests.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore { return &MemStore{data: map[string][]byte{}} }

func (m *MemStore) Put(key string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	key = clean(key)
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return key, nil
}

func (m *MemStore) Get(key string) (io.ReadCloser, error) {
	m.mu.RLock()
	b, ok := m.data[clean(key)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *MemStore) SignedURL(key string) (string, error) {
	return "mem://" + clean(key), nil
}
