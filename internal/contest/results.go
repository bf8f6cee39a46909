package contest

import (
	"context"
	"errors"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
)

// ResultStore caches finished results by student ID. Results are immutable once
// stored and never written to the durable store.
type ResultStore struct {
	t *cache.Table[exam.Result]
}

func NewResultStore(t *cache.Table[exam.Result]) *ResultStore { return &ResultStore{t: t} }

// Get reports whether a result is cached for studentID.
func (r *ResultStore) Get(ctx context.Context, studentID string) (exam.Result, bool, error) {
	res, err := r.t.Get(ctx, studentID)
	if errors.Is(err, cache.ErrMiss) {
		return exam.Result{}, false, nil
	}
	if err != nil {
		return exam.Result{}, false, err
	}
	return res, true, nil
}

func (r *ResultStore) Put(ctx context.Context, studentID string, res exam.Result) error {
	return r.t.Put(ctx, studentID, res)
}
