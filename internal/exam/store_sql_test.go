package exam_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/history-contest/internal/db"
	"github.com/mind-engage/history-contest/internal/exam"
)

func openSQLite(t *testing.T) exam.Store {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbh.Close() })
	return exam.NewSQLStore(dbh, string(db.DriverSQLite))
}

func stores(t *testing.T) map[string]exam.Store {
	return map[string]exam.Store{
		"memory": exam.NewInMemoryStore(),
		"sqlite": openSQLite(t),
	}
}

func TestStore_Questions(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.PutQuestions(ctx, []exam.Question{
				{ID: 2, Type: "truefalse", Content: "Rome fell in 476", Choices: []string{"true", "false"}, Answer: 0, Points: 1},
				{ID: 1, Type: "choice", Content: "First emperor?", Choices: []string{"Augustus", "Nero"}, Answer: 0, Points: 3},
			}))
			qs, err := st.ListQuestions(ctx)
			require.NoError(t, err)
			require.Len(t, qs, 2)
			assert.Equal(t, 1, qs[0].ID)
			assert.Equal(t, []string{"Augustus", "Nero"}, qs[0].Choices)

			q, err := st.GetQuestion(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, "truefalse", q.Type)

			_, err = st.GetQuestion(ctx, 3)
			assert.ErrorIs(t, err, exam.ErrNotFound)
		})
	}
}

func TestStore_SeedsAreImmutable(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, st.SaveSeeds(ctx, []exam.Seed{{ID: 1, QuestionIDs: []int{3, 1, 2}, CreatedAt: 10}}))
			sd, err := st.GetSeed(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, []int{3, 1, 2}, sd.QuestionIDs, "order is preserved")

			_, err = st.GetSeed(ctx, 2)
			assert.ErrorIs(t, err, exam.ErrNotFound)
		})
	}
}

func TestSQLStore_StudentRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := openSQLite(t)
	seedID := 4
	started := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	finished := started.Add(17 * time.Minute)

	require.NoError(t, st.SaveStudents(ctx, []exam.Student{
		{ID: "s1", Name: "Ann", PasswordHash: "$2a$x"},
		{
			ID: "s2", Name: "Bo", TestState: exam.Tested, SeedID: &seedID, Choices: []int{1, 0, 3},
			Score: 6, TimeStarted: &started, DateTimeFinished: &finished, TimeConsumed: 17 * time.Minute,
		},
	}))

	got, err := st.GetStudent(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, exam.Tested, got.TestState)
	require.NotNil(t, got.SeedID)
	assert.Equal(t, 4, *got.SeedID)
	assert.Equal(t, []int{1, 0, 3}, got.Choices)
	assert.Equal(t, 6, got.Score)
	assert.True(t, got.DateTimeFinished.Equal(finished))
	assert.Equal(t, 17*time.Minute, got.TimeConsumed)

	fresh, err := st.GetStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, fresh.SeedID)
	assert.Nil(t, fresh.Choices)
	assert.Nil(t, fresh.TimeStarted)

	fresh.TestState = exam.Testing
	require.NoError(t, st.SaveStudents(ctx, []exam.Student{fresh}))
	all, err := st.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, exam.Testing, all[0].TestState)

	_, err = st.GetStudent(ctx, "nobody")
	assert.Equal(t, exam.KindNotFound, exam.KindOf(err))
}
