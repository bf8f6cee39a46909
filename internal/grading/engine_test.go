package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/history-contest/internal/exam"
)

func key() []exam.CorrectAnswer {
	return []exam.CorrectAnswer{
		{ID: 1, Answer: 0, Points: 4},
		{ID: 2, Answer: 2, Points: 3},
	}
}

func TestScore_AllCorrect(t *testing.T) {
	got, err := NewEngine().Score([]exam.SubmittedAnswer{{ID: 1, Answer: 0}, {ID: 2, Answer: 2}}, key())
	require.NoError(t, err)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, []exam.ResultDetail{
		{ID: 1, Correct: 0, Submit: 0},
		{ID: 2, Correct: 2, Submit: 2},
	}, got.Details)
}

func TestScore_PartialAndZero(t *testing.T) {
	e := NewEngine()

	got, err := e.Score([]exam.SubmittedAnswer{{ID: 1, Answer: 0}, {ID: 2, Answer: 1}}, key())
	require.NoError(t, err)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 1, got.Details[1].Submit)
	assert.Equal(t, 2, got.Details[1].Correct)

	got, err = e.Score([]exam.SubmittedAnswer{{ID: 1, Answer: 3}, {ID: 2, Answer: 1}}, key())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Total)
}

func TestScore_LengthMismatch(t *testing.T) {
	_, err := NewEngine().Score([]exam.SubmittedAnswer{{ID: 1, Answer: 0}}, key())
	require.Error(t, err)
	assert.ErrorIs(t, err, exam.ErrIntegrity)
}

func TestScore_IDMismatch(t *testing.T) {
	_, err := NewEngine().Score([]exam.SubmittedAnswer{{ID: 2, Answer: 2}, {ID: 1, Answer: 0}}, key())
	require.Error(t, err)
	assert.Equal(t, exam.KindIntegrity, exam.KindOf(err))
	assert.Contains(t, exam.DetailOf(err), "question id 2 at position 0")
}

func TestScore_Deterministic(t *testing.T) {
	sub := []exam.SubmittedAnswer{{ID: 1, Answer: 0}, {ID: 2, Answer: 0}}
	a, err := NewEngine().Score(sub, key())
	require.NoError(t, err)
	b, err := NewEngine().Score(sub, key())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMaxScore(t *testing.T) {
	assert.Equal(t, 7, MaxScore(key()))
	assert.Equal(t, 0, MaxScore(nil))
}
