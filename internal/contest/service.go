package contest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/grading"
	"github.com/mind-engage/history-contest/internal/seed"
	"github.com/mind-engage/history-contest/internal/session"
)

// InitResult tells the caller whether the student now holds a usable seed.
type InitResult struct {
	IsSeedSet bool `json:"isSeedSet"`
}

// Service drives a student through Untested -> Testing -> Tested.
// All transitions of one student are serialized.
type Service struct {
	students  *cache.Table[exam.Student]
	questions *cache.Table[exam.Question]
	seeds     *seed.Registry
	results   *ResultStore
	engine    grading.Engine

	locks *keyedMutex
	now   func() time.Time
	log   *log.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithLogger(l *log.Logger) Option       { return func(s *Service) { s.log = l } }

func NewService(t Tables, seeds *seed.Registry, opts ...Option) *Service {
	s := &Service{
		students:  t.Students,
		questions: t.Questions,
		seeds:     seeds,
		results:   NewResultStore(t.Results),
		engine:    grading.NewEngine(),
		locks:     newKeyedMutex(),
		now:       time.Now,
		log:       log.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetState returns the lifecycle position of the student.
func (s *Service) GetState(ctx context.Context, studentID string) (exam.TestState, error) {
	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return exam.Untested, err
	}
	return st.TestState, nil
}

// Initialize starts the exam of an Untested student. An already recorded seed is
// kept. When that seed can no longer be resolved the student stays Untested and
// IsSeedSet is false, so the caller can ask for a Reset.
func (s *Service) Initialize(ctx context.Context, studentID string) (InitResult, error) {
	defer s.locks.Lock(studentID)()

	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return InitResult{}, err
	}
	if st.TestState != exam.Untested {
		return InitResult{}, exam.Errorf(exam.KindInvalidState, "initialize", "student is already %s", st.TestState)
	}

	var sd exam.Seed
	if st.SeedID == nil {
		if sd, err = s.seeds.Pick(); err != nil {
			return InitResult{}, err
		}
	} else {
		sd, err = s.seeds.Get(ctx, *st.SeedID)
		if exam.KindOf(err) == exam.KindNotFound {
			return InitResult{IsSeedSet: false}, nil
		}
		if err != nil {
			return InitResult{}, err
		}
	}
	return s.begin(ctx, st, sd)
}

// Reset gives the student a fresh seed and restarts the clock. A finished attempt
// cannot be reset.
func (s *Service) Reset(ctx context.Context, studentID string) (InitResult, error) {
	defer s.locks.Lock(studentID)()

	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return InitResult{}, err
	}
	if st.TestState == exam.Tested {
		return InitResult{}, exam.Errorf(exam.KindInvalidState, "reset", "answers already submitted")
	}
	sd, err := s.seeds.Pick()
	if err != nil {
		return InitResult{}, err
	}
	return s.begin(ctx, st, sd)
}

// Resume reattaches a Testing student to the running attempt, for example after
// the session expired. Seed and start time are left as they are.
func (s *Service) Resume(ctx context.Context, studentID string) (InitResult, error) {
	defer s.locks.Lock(studentID)()

	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return InitResult{}, err
	}
	if st.TestState != exam.Testing {
		return InitResult{}, exam.Errorf(exam.KindInvalidState, "resume", "student is %s", st.TestState)
	}
	if st.SeedID == nil {
		return InitResult{IsSeedSet: false}, nil
	}
	sd, err := s.seeds.Get(ctx, *st.SeedID)
	if exam.KindOf(err) == exam.KindNotFound {
		return InitResult{IsSeedSet: false}, nil
	}
	if err != nil {
		return InitResult{}, err
	}
	started := s.stamp()
	if st.TimeStarted != nil {
		started = *st.TimeStarted
	}
	if sess := session.FromContext(ctx); sess != nil {
		sess.Bind(studentID)
		sess.SetExam(sd.ID, started)
	}
	return InitResult{IsSeedSet: true}, nil
}

func (s *Service) begin(ctx context.Context, st exam.Student, sd exam.Seed) (InitResult, error) {
	now := s.stamp()
	id := sd.ID
	st.SeedID = &id
	st.TestState = exam.Testing
	st.TimeStarted = &now
	st.Choices = nil
	if err := s.students.Set(ctx, st.ID, st); err != nil {
		return InitResult{}, err
	}
	if sess := session.FromContext(ctx); sess != nil {
		sess.Bind(st.ID)
		sess.SetExam(sd.ID, now)
	}
	return InitResult{IsSeedSet: true}, nil
}

// Submit scores the answers and finishes the attempt. Validation failures leave
// the student in Testing; a second submission is rejected.
func (s *Service) Submit(ctx context.Context, studentID string, answers []exam.SubmittedAnswer) (exam.Result, error) {
	defer s.locks.Lock(studentID)()

	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return exam.Result{}, err
	}
	switch st.TestState {
	case exam.Testing:
	case exam.Tested:
		return exam.Result{}, exam.Errorf(exam.KindInvalidState, "submit", "answers already submitted")
	default:
		return exam.Result{}, exam.Errorf(exam.KindInvalidState, "submit", "exam not started")
	}
	if st.SeedID == nil {
		return exam.Result{}, exam.Errorf(exam.KindIntegrity, "submit", "question seed not created")
	}
	sd, err := s.seeds.Get(ctx, *st.SeedID)
	if err != nil {
		return exam.Result{}, err
	}
	correct, err := s.correctAnswers(ctx, sd)
	if err != nil {
		return exam.Result{}, err
	}
	scored, err := s.engine.Score(answers, correct)
	if err != nil {
		return exam.Result{}, err
	}

	finished := s.stamp()
	consumed := finished.Sub(s.startedAt(ctx, st, finished)).Truncate(time.Millisecond)
	choices := make([]int, len(answers))
	for i, a := range answers {
		choices[i] = a.Answer
	}
	st.Choices = choices
	st.Score = scored.Total
	st.DateTimeFinished = &finished
	st.TimeConsumed = consumed
	st.TestState = exam.Tested
	if err := s.students.Set(ctx, st.ID, st); err != nil {
		return exam.Result{}, err
	}

	res := exam.Result{
		Score:        scored.Total,
		TimeFinished: finished,
		TimeConsumed: consumed,
		Details:      scored.Details,
	}
	if err := s.results.Put(ctx, st.ID, res); err != nil {
		s.log.Printf("contest: cache result of %s: %v", st.ID, err)
	}
	return res, nil
}

// stamp is the current time at the precision the durable store keeps.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// startedAt prefers the begin time of the current session, then the stored one.
func (s *Service) startedAt(ctx context.Context, st exam.Student, fallback time.Time) time.Time {
	if sess := session.FromContext(ctx); sess != nil && sess.StudentID() == st.ID {
		if begin, ok := sess.BeginTime(); ok {
			return begin
		}
	}
	if st.TimeStarted != nil {
		return *st.TimeStarted
	}
	return fallback
}

// GetResult returns the result computed at submission, rebuilding it from the
// student record when it is no longer cached.
func (s *Service) GetResult(ctx context.Context, studentID string) (exam.Result, error) {
	if res, ok, err := s.results.Get(ctx, studentID); err != nil {
		return exam.Result{}, err
	} else if ok {
		return res, nil
	}

	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return exam.Result{}, err
	}
	if st.TestState != exam.Tested {
		return exam.Result{}, exam.Errorf(exam.KindNotCompleted, "get result", "student %s has not finished", studentID)
	}
	res, err := s.reconstruct(ctx, st)
	if err != nil {
		return exam.Result{}, err
	}
	if err := s.results.Put(ctx, studentID, res); err != nil {
		s.log.Printf("contest: cache result of %s: %v", studentID, err)
	}
	return res, nil
}

func (s *Service) reconstruct(ctx context.Context, st exam.Student) (exam.Result, error) {
	if st.SeedID == nil {
		return exam.Result{}, exam.Errorf(exam.KindIntegrity, "get result", "question seed not created")
	}
	sd, err := s.seeds.Get(ctx, *st.SeedID)
	if err != nil {
		return exam.Result{}, err
	}
	correct, err := s.correctAnswers(ctx, sd)
	if err != nil {
		return exam.Result{}, err
	}
	if len(st.Choices) != len(correct) {
		return exam.Result{}, exam.Errorf(exam.KindIntegrity, "get result",
			"student %s has %d choices for %d questions", st.ID, len(st.Choices), len(correct))
	}
	details := make([]exam.ResultDetail, len(correct))
	for i, c := range correct {
		details[i] = exam.ResultDetail{ID: c.ID, Correct: c.Answer, Submit: st.Choices[i]}
	}
	res := exam.Result{Score: st.Score, TimeConsumed: st.TimeConsumed, Details: details}
	if st.DateTimeFinished != nil {
		res.TimeFinished = *st.DateTimeFinished
	}
	return res, nil
}

// Questions returns the questions of the student's seed in seed order, without answers.
func (s *Service) Questions(ctx context.Context, studentID string) ([]exam.QuestionView, error) {
	sd, err := s.studentSeed(ctx, studentID, "questions")
	if err != nil {
		return nil, err
	}
	out := make([]exam.QuestionView, 0, len(sd.QuestionIDs))
	for _, id := range sd.QuestionIDs {
		q, err := s.questions.Get(ctx, cache.IntID(id))
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", sd.ID, err)
		}
		out = append(out, q.View())
	}
	return out, nil
}

// Answers returns the answer key of the student's seed.
func (s *Service) Answers(ctx context.Context, studentID string) ([]exam.CorrectAnswer, error) {
	sd, err := s.studentSeed(ctx, studentID, "answers")
	if err != nil {
		return nil, err
	}
	return s.correctAnswers(ctx, sd)
}

// Answer returns the answer of a single question.
func (s *Service) Answer(ctx context.Context, questionID int) (exam.CorrectAnswer, error) {
	q, err := s.questions.Get(ctx, cache.IntID(questionID))
	if err != nil {
		return exam.CorrectAnswer{}, err
	}
	return exam.CorrectAnswer{ID: q.ID, Answer: q.Answer, Points: q.Points}, nil
}

func (s *Service) studentSeed(ctx context.Context, studentID, op string) (exam.Seed, error) {
	st, err := s.students.Get(ctx, studentID)
	if err != nil {
		return exam.Seed{}, err
	}
	if st.SeedID == nil {
		return exam.Seed{}, exam.Errorf(exam.KindIntegrity, op, "question seed not created")
	}
	return s.seeds.Get(ctx, *st.SeedID)
}

func (s *Service) correctAnswers(ctx context.Context, sd exam.Seed) ([]exam.CorrectAnswer, error) {
	out := make([]exam.CorrectAnswer, 0, len(sd.QuestionIDs))
	for _, id := range sd.QuestionIDs {
		q, err := s.questions.Get(ctx, cache.IntID(id))
		if err != nil {
			return nil, fmt.Errorf("seed %d: %w", sd.ID, err)
		}
		out = append(out, exam.CorrectAnswer{ID: q.ID, Answer: q.Answer, Points: q.Points})
	}
	return out, nil
}
