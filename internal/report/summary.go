package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/storage"
)

const SummaryKey = "scores/summary.csv"

// StudentLister lists the durable student records.
type StudentLister interface {
	ListStudents(ctx context.Context) ([]exam.Student, error)
}

// Summary writes the school score table: finished students by score, then the rest.
type Summary struct {
	Students StudentLister
	Blobs    storage.BlobStore
	Key      string
}

func (s Summary) Write(ctx context.Context) (string, error) {
	list, err := s.Students.ListStudents(ctx)
	if err != nil {
		return "", fmt.Errorf("summary: list students: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if (a.TestState == exam.Tested) != (b.TestState == exam.Tested) {
			return a.TestState == exam.Tested
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ID < b.ID
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"rank", "id", "name", "state", "score", "finished_at", "time_consumed_s"})
	for i, st := range list {
		rank, finished := "", ""
		if st.TestState == exam.Tested {
			rank = strconv.Itoa(i + 1)
		}
		if st.DateTimeFinished != nil {
			finished = st.DateTimeFinished.UTC().Format(time.RFC3339)
		}
		_ = w.Write([]string{
			rank, st.ID, st.Name, st.TestState.String(), strconv.Itoa(st.Score),
			finished, strconv.FormatInt(int64(st.TimeConsumed/time.Second), 10),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := s.Key
	if key == "" {
		key = SummaryKey
	}
	return s.Blobs.Put(key, &buf)
}

// Hook regenerates the summary after each cycle that persisted something.
func (s Summary) Hook() cache.Hook {
	return func(ctx context.Context, r cache.CycleReport) error {
		if r.Written == 0 {
			return nil
		}
		_, err := s.Write(ctx)
		return err
	}
}
