package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader fetches one value from the durable store on a cache miss.
type Loader[V any] func(ctx context.Context, id string) (V, error)

// Writer persists a batch of values to the durable store.
type Writer[V any] func(ctx context.Context, vals []V) error

// Table is a typed namespace inside a Cache. Writes go to the backend at once and
// reach the durable store through the Writer on the next Flush. A Table without a
// Writer is cache-only.
type Table[V any] struct {
	name  string
	c     *Cache
	load  Loader[V]
	write Writer[V]

	group singleflight.Group

	mu    sync.Mutex
	seq   uint64
	dirty map[string]uint64 // id -> version of the last Set
}

// NewTable registers a table named name on c.
func NewTable[V any](c *Cache, name string, load Loader[V], write Writer[V]) *Table[V] {
	t := &Table[V]{name: name, c: c, load: load, write: write, dirty: map[string]uint64{}}
	c.register(t)
	return t
}

func (t *Table[V]) Name() string { return t.name }

// Get returns the cached value, falling back to the Loader on a miss. Concurrent
// misses for the same id share one load.
func (t *Table[V]) Get(ctx context.Context, id string) (V, error) {
	var zero V
	v, err := t.cached(ctx, id)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrMiss) || t.load == nil {
		return zero, err
	}

	res, err, _ := t.group.Do(id, func() (any, error) {
		lctx, cancel := context.WithTimeout(ctx, t.c.storeTimeout)
		defer cancel()
		loaded, err := t.load(lctx, id)
		if err != nil {
			return zero, err
		}
		b, err := json.Marshal(loaded)
		if err != nil {
			return zero, err
		}
		added, err := t.c.backend.Add(ctx, TableKey(t.name, id), b, 0)
		if err != nil {
			return zero, err
		}
		if !added {
			// a concurrent Set won; serve that value
			return t.cached(ctx, id)
		}
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(V), nil
}

// Set stores v and marks it for the next flush.
func (t *Table[V]) Set(ctx context.Context, id string, v V) error {
	if err := t.Put(ctx, id, v); err != nil {
		return err
	}
	if t.write == nil {
		return nil
	}
	t.mu.Lock()
	t.seq++
	t.dirty[id] = t.seq
	t.mu.Unlock()
	return nil
}

// Put stores v without scheduling a durable write. Used for values that already
// match the store (bulk load) or are derived from it.
func (t *Table[V]) Put(ctx context.Context, id string, v V) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache %s: encode %s: %w", t.name, id, err)
	}
	return t.c.backend.Set(ctx, TableKey(t.name, id), b, 0)
}

// Dirty counts entries waiting for a flush.
func (t *Table[V]) Dirty() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.dirty)
}

// Flush writes every dirty entry through the Writer in one batch. An entry stays
// dirty when the write fails or when it was Set again while the flush ran.
func (t *Table[V]) Flush(ctx context.Context) (int, error) {
	if t.write == nil {
		return 0, nil
	}
	t.mu.Lock()
	snap := make(map[string]uint64, len(t.dirty))
	for id, ver := range t.dirty {
		snap[id] = ver
	}
	t.mu.Unlock()
	if len(snap) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	vals := make([]V, 0, len(ids))
	written := make([]string, 0, len(ids))
	var gone []string
	for _, id := range ids {
		v, err := t.cached(ctx, id)
		if errors.Is(err, ErrMiss) {
			gone = append(gone, id)
			continue
		}
		if err != nil {
			return 0, &SyncError{Table: t.name, Pending: len(ids), Err: err}
		}
		vals = append(vals, v)
		written = append(written, id)
	}

	if len(vals) > 0 {
		wctx, cancel := context.WithTimeout(ctx, t.c.storeTimeout)
		err := t.write(wctx, vals)
		cancel()
		if err != nil {
			return 0, &SyncError{Table: t.name, Pending: len(ids), Err: err}
		}
	}

	t.mu.Lock()
	for _, id := range append(written, gone...) {
		if t.dirty[id] == snap[id] {
			delete(t.dirty, id)
		}
	}
	t.mu.Unlock()
	if len(gone) > 0 && t.c.log != nil {
		t.c.log.Printf("cache %s: %d dirty entries vanished from backend before flush", t.name, len(gone))
	}
	return len(written), nil
}

func (t *Table[V]) cached(ctx context.Context, id string) (V, error) {
	var v V
	b, err := t.c.backend.Get(ctx, TableKey(t.name, id))
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("cache %s: decode %s: %w", t.name, id, err)
	}
	return v, nil
}

func (t *Table[V]) resetDirty() {
	t.mu.Lock()
	t.dirty = map[string]uint64{}
	t.mu.Unlock()
}
