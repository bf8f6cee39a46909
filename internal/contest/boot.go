package contest

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/seed"
)

// BootReport summarizes a cold start.
type BootReport struct {
	Questions int
	Students  int
	OldSeeds  int
	NewSeeds  int
}

// Boot performs the cold start: it empties the cache, loads questions, students and
// earlier seeds from the store, creates scale fresh seeds and flushes them at once.
//
// A question bank too small for the configured seed size is reported as a
// configuration error after everything else is loaded; the service still answers
// but Initialize fails until the bank is fixed.
func Boot(ctx context.Context, c *cache.Cache, store exam.Store, t Tables, reg *seed.Registry, scale int, logger *log.Logger) (BootReport, error) {
	var rep BootReport
	if err := c.Reset(ctx); err != nil {
		return rep, err
	}

	var (
		questions []exam.Question
		students  []exam.Student
		seeds     []exam.Seed
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qs, err := store.ListQuestions(gctx)
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		for _, q := range qs {
			if err := t.Questions.Put(gctx, cache.IntID(q.ID), q); err != nil {
				return err
			}
		}
		questions = qs
		return nil
	})
	g.Go(func() error {
		ss, err := store.ListStudents(gctx)
		if err != nil {
			return fmt.Errorf("load students: %w", err)
		}
		for _, st := range ss {
			if err := t.Students.Put(gctx, st.ID, st); err != nil {
				return err
			}
		}
		students = ss
		return nil
	})
	g.Go(func() error {
		sd, err := store.ListSeeds(gctx)
		if err != nil {
			return fmt.Errorf("load seeds: %w", err)
		}
		seeds = sd
		return reg.Restore(gctx, sd)
	})
	if err := g.Wait(); err != nil {
		return rep, err
	}
	rep.Questions, rep.Students, rep.OldSeeds = len(questions), len(students), len(seeds)

	bank := make([]int, len(questions))
	for i, q := range questions {
		bank[i] = q.ID
	}
	created, err := reg.CreateSeeds(ctx, bank, scale)
	if err != nil {
		return rep, err
	}
	rep.NewSeeds = len(created)

	if _, err := c.Flush(ctx); err != nil {
		// seeds stay dirty, the syncer retries
		logger.Printf("boot: initial flush: %v", err)
	}
	logger.Printf("boot: %d questions, %d students, %d seeds restored, %d created",
		rep.Questions, rep.Students, rep.OldSeeds, rep.NewSeeds)
	return rep, nil
}
