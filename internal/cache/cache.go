package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

type Clock func() time.Time

// SyncError reports a flush that could not reach the durable store. The affected
// entries stay dirty and are retried on the next cycle.
type SyncError struct {
	Table   string
	Pending int
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("cache sync %s (%d pending): %v", e.Table, e.Pending, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

type table interface {
	Name() string
	Dirty() int
	Flush(ctx context.Context) (int, error)
	resetDirty()
}

// Cache owns a Backend and the tables layered on it.
type Cache struct {
	backend      Backend
	storeTimeout time.Duration
	log          *log.Logger

	flushMu sync.Mutex // one flush at a time
	mu      sync.RWMutex
	tables  []table
}

type Option func(*Cache)

// WithStoreTimeout bounds every durable load and write. Default 5s.
func WithStoreTimeout(d time.Duration) Option { return func(c *Cache) { c.storeTimeout = d } }
func WithLogger(l *log.Logger) Option         { return func(c *Cache) { c.log = l } }

func New(b Backend, opts ...Option) *Cache {
	c := &Cache{backend: b, storeTimeout: 5 * time.Second}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) Backend() Backend { return c.backend }

func (c *Cache) register(t table) {
	c.mu.Lock()
	c.tables = append(c.tables, t)
	c.mu.Unlock()
}

// Reset clears the backend and forgets pending writes. Only for cold start.
func (c *Cache) Reset(ctx context.Context) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	if err := c.backend.Clear(ctx); err != nil {
		return fmt.Errorf("cache reset: %w", err)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tables {
		t.resetDirty()
	}
	return nil
}

// Flush flushes every table. A failing table does not stop the others; the
// returned error joins one *SyncError per failed table.
func (c *Cache) Flush(ctx context.Context) (int, error) {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()
	c.mu.RLock()
	tables := append([]table(nil), c.tables...)
	c.mu.RUnlock()

	total := 0
	var errs []error
	for _, t := range tables {
		n, err := t.Flush(ctx)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// Dirty counts pending writes across all tables.
func (c *Cache) Dirty() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, t := range c.tables {
		n += t.Dirty()
	}
	return n
}
