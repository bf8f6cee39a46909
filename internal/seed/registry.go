package seed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
)

// Registry creates question seeds and hands them out to students.
//
// Seeds created by this process form the pool Pick draws from. Seeds from earlier
// runs stay resolvable through Get so finished students keep their results.
type Registry struct {
	seeds *cache.Table[exam.Seed]
	size  int
	now   func() time.Time

	mu     sync.Mutex
	rnd    *rand.Rand
	pool   []exam.Seed
	lastID int
}

type Option func(*Registry)

// WithRand fixes the randomness source, for tests.
func WithRand(r *rand.Rand) Option          { return func(g *Registry) { g.rnd = r } }
func WithClock(now func() time.Time) Option { return func(g *Registry) { g.now = now } }

// NewRegistry builds a registry producing seeds of size questions each.
func NewRegistry(seeds *cache.Table[exam.Seed], size int, opts ...Option) *Registry {
	g := &Registry{seeds: seeds, size: size, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	if g.rnd == nil {
		g.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g
}

func (g *Registry) Size() int { return g.size }

// Restore loads seeds persisted by earlier runs into the cache. New seeds get IDs
// above the highest restored one.
func (g *Registry) Restore(ctx context.Context, existing []exam.Seed) error {
	for _, sd := range existing {
		if err := g.seeds.Put(ctx, cache.IntID(sd.ID), sd); err != nil {
			return err
		}
		g.mu.Lock()
		if sd.ID > g.lastID {
			g.lastID = sd.ID
		}
		g.mu.Unlock()
	}
	return nil
}

// CreateSeeds samples scale seeds of distinct question IDs from bank and replaces
// the pool with them. Each seed is written through the cache and persisted on the
// next flush.
func (g *Registry) CreateSeeds(ctx context.Context, bank []int, scale int) ([]exam.Seed, error) {
	if scale < 1 {
		return nil, exam.Errorf(exam.KindConfiguration, "create seeds", "seed scale must be positive, got %d", scale)
	}
	if g.size < 1 || len(bank) < g.size {
		return nil, exam.Errorf(exam.KindConfiguration, "create seeds",
			"question bank has %d questions, seeds need %d", len(bank), g.size)
	}

	g.mu.Lock()
	created := make([]exam.Seed, 0, scale)
	for i := 0; i < scale; i++ {
		perm := g.rnd.Perm(len(bank))[:g.size]
		ids := make([]int, g.size)
		for j, p := range perm {
			ids[j] = bank[p]
		}
		g.lastID++
		created = append(created, exam.Seed{ID: g.lastID, QuestionIDs: ids, CreatedAt: g.now().Unix()})
	}
	g.mu.Unlock()

	for _, sd := range created {
		if err := g.seeds.Set(ctx, cache.IntID(sd.ID), sd); err != nil {
			return nil, err
		}
	}

	g.mu.Lock()
	g.pool = created
	g.mu.Unlock()
	return created, nil
}

// Pick returns a random seed from the pool.
func (g *Registry) Pick() (exam.Seed, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.pool) == 0 {
		return exam.Seed{}, exam.Errorf(exam.KindConfiguration, "pick seed", "question seed bank is empty")
	}
	return g.pool[g.rnd.Intn(len(g.pool))], nil
}

// Get resolves any seed, current or restored.
func (g *Registry) Get(ctx context.Context, id int) (exam.Seed, error) {
	return g.seeds.Get(ctx, cache.IntID(id))
}

// Pool returns the seeds created by the last CreateSeeds call.
func (g *Registry) Pool() []exam.Seed {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]exam.Seed(nil), g.pool...)
}
