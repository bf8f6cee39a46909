package grading

import (
	"github.com/mind-engage/history-contest/internal/exam"
)

// Scored is the outcome of grading one submission.
type Scored struct {
	Total   int
	Details []exam.ResultDetail
}

// Engine grades a submission against the answer key of a seed.
// It is pure: no clock, no randomness, no shared state.
type Engine struct{}

func NewEngine() Engine { return Engine{} }

// Score compares submitted answers with the correct ones position by position.
// Both slices must have the same length and the same question ID at every index.
func (Engine) Score(submitted []exam.SubmittedAnswer, correct []exam.CorrectAnswer) (Scored, error) {
	if len(submitted) != len(correct) {
		return Scored{}, exam.Errorf(exam.KindIntegrity, "score",
			"expected %d answers, got %d", len(correct), len(submitted))
	}
	out := Scored{Details: make([]exam.ResultDetail, len(correct))}
	for i, c := range correct {
		s := submitted[i]
		if s.ID != c.ID {
			return Scored{}, exam.Errorf(exam.KindIntegrity, "score",
				"question id %d at position %d does not match %d", s.ID, i, c.ID)
		}
		if s.Answer == c.Answer {
			out.Total += c.Points
		}
		out.Details[i] = exam.ResultDetail{ID: c.ID, Correct: c.Answer, Submit: s.Answer}
	}
	return out, nil
}

// MaxScore is the total attainable for the given key.
func MaxScore(correct []exam.CorrectAnswer) int {
	total := 0
	for _, c := range correct {
		total += c.Points
	}
	return total
}
