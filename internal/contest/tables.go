package contest

import (
	"context"
	"strconv"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
)

// Tables are the cache namespaces of the contest.
type Tables struct {
	Questions *cache.Table[exam.Question]
	Seeds     *cache.Table[exam.Seed]
	Students  *cache.Table[exam.Student]
	Results   *cache.Table[exam.Result]
}

// NewTables registers the contest tables on c, backed by store. Questions are
// read-only, results never leave the cache.
func NewTables(c *cache.Cache, store exam.Store) Tables {
	return Tables{
		Questions: cache.NewTable[exam.Question](c, "question",
			func(ctx context.Context, id string) (exam.Question, error) {
				n, err := intID(id)
				if err != nil {
					return exam.Question{}, err
				}
				return store.GetQuestion(ctx, n)
			}, nil),
		Seeds: cache.NewTable[exam.Seed](c, "seed",
			func(ctx context.Context, id string) (exam.Seed, error) {
				n, err := intID(id)
				if err != nil {
					return exam.Seed{}, err
				}
				return store.GetSeed(ctx, n)
			}, store.SaveSeeds),
		Students: cache.NewTable[exam.Student](c, "student", store.GetStudent, store.SaveStudents),
		Results:  cache.NewTable[exam.Result](c, "result", nil, nil),
	}
}

func intID(id string) (int, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0, exam.Errorf(exam.KindNotFound, "lookup", "invalid id %q", id)
	}
	return n, nil
}
