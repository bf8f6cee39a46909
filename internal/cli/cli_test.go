package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/history-contest/internal/exam"
)

const questionsYAML = `
- id: 1
  content: Who was the first Roman emperor?
  choices: [Augustus, Nero, Caligula]
  answer: 0
  points: 3
- id: 2
  type: truefalse
  content: The Western Roman Empire fell in 476.
  answer: 0
  points: 1
`

func TestParseQuestions(t *testing.T) {
	qs, err := parseQuestions(strings.NewReader(questionsYAML))
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "choice", qs[0].Type)
	assert.Equal(t, []string{"true", "false"}, qs[1].Choices)
	assert.Equal(t, 3, qs[0].Points)
}

func TestParseQuestions_Rejects(t *testing.T) {
	cases := map[string]string{
		"duplicate id":   "- {id: 1, choices: [a, b], answer: 0, points: 1}\n- {id: 1, choices: [a, b], answer: 0, points: 1}\n",
		"zero points":    "- {id: 1, choices: [a, b], answer: 0, points: 0}\n",
		"answer range":   "- {id: 1, choices: [a, b], answer: 2, points: 1}\n",
		"missing id":     "- {choices: [a, b], answer: 0, points: 1}\n",
		"not a sequence": "id: 1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseQuestions(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestMergeStudents_KeepsExamState(t *testing.T) {
	ctx := context.Background()
	store := exam.NewInMemoryStore()
	seedID := 3
	require.NoError(t, store.SaveStudents(ctx, []exam.Student{
		{ID: "s1", Name: "Old", TestState: exam.Tested, SeedID: &seedID, Choices: []int{1}, Score: 4},
	}))

	rows, err := parseStudents(strings.NewReader("- {id: s1, name: Ann, password: pw}\n- {id: s2, password: pw2}\n"))
	require.NoError(t, err)
	merged, created, err := mergeStudents(ctx, store, rows, bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, merged, 2)

	assert.Equal(t, "Ann", merged[0].Name)
	assert.Equal(t, exam.Tested, merged[0].TestState)
	assert.Equal(t, 4, merged[0].Score)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(merged[0].PasswordHash), []byte("pw")))
	assert.Equal(t, exam.Untested, merged[1].TestState)

	_, err = parseStudents(strings.NewReader("- {id: a}\n- {id: a}\n"))
	assert.Error(t, err)
}

func TestRenderResults_Ordering(t *testing.T) {
	fin := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	renderResults(&buf, []exam.Student{
		{ID: "low", TestState: exam.Tested, Score: 1, DateTimeFinished: &fin},
		{ID: "idle"},
		{ID: "high", TestState: exam.Tested, Score: 9, DateTimeFinished: &fin, TimeConsumed: 61 * time.Second},
	})
	out := buf.String()
	assert.Less(t, strings.Index(out, "high"), strings.Index(out, "low"))
	assert.Less(t, strings.Index(out, "low"), strings.Index(out, "idle"))
	assert.Contains(t, out, "1m1s")
}

func TestRenderSeeds(t *testing.T) {
	var buf bytes.Buffer
	renderSeeds(&buf, []exam.Seed{{ID: 5, QuestionIDs: []int{4, 2, 9}, CreatedAt: 0}})
	assert.Contains(t, buf.String(), "4,2,9")
}
