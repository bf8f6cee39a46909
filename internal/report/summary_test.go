package report

import (
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/storage"
)

func TestSummary_RanksFinishedStudents(t *testing.T) {
	ctx := context.Background()
	store := exam.NewInMemoryStore()
	fin := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveStudents(ctx, []exam.Student{
		{ID: "a", Name: "Ann", TestState: exam.Tested, Score: 5, DateTimeFinished: &fin, TimeConsumed: 90 * time.Second},
		{ID: "b", Name: "Bo", TestState: exam.Testing},
		{ID: "c", Name: "Cy", TestState: exam.Tested, Score: 9, DateTimeFinished: &fin, TimeConsumed: time.Minute},
	}))
	blobs := storage.NewMemStore()
	s := Summary{Students: store, Blobs: blobs}

	hook := s.Hook()
	require.NoError(t, hook(ctx, cache.CycleReport{}))
	_, err := blobs.Get(SummaryKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "nothing written, nothing exported")

	require.NoError(t, hook(ctx, cache.CycleReport{Written: 1}))
	rc, err := blobs.Get(SummaryKey)
	require.NoError(t, err)
	defer rc.Close()
	rows, err := csv.NewReader(rc).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"1", "c", "Cy", "tested", "9", "2024-03-01T09:00:00Z", "60"}, rows[1])
	assert.Equal(t, []string{"2", "a", "Ann", "tested", "5", "2024-03-01T09:00:00Z", "90"}, rows[2])
	assert.Equal(t, []string{"", "b", "Bo", "testing", "0", "", "0"}, rows[3])
}
