package session

import (
	"context"
	"sync"
	"time"
)

// Values is what a session remembers between requests.
type Values struct {
	StudentID string     `json:"student_id,omitempty"`
	SeedID    *int       `json:"seed_id,omitempty"`
	BeginTime *time.Time `json:"begin_time,omitempty"`
}

// Session is the request-scoped view of one browser session.
type Session struct {
	ID string

	mu   sync.Mutex
	vals Values
}

func newSession(id string, v Values) *Session {
	return &Session{ID: id, vals: v}
}

func (s *Session) Values() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals
}

// SetExam records the seed and start time of the running attempt.
func (s *Session) SetExam(seedID int, begin time.Time) {
	s.mu.Lock()
	s.vals.SeedID = &seedID
	b := begin
	s.vals.BeginTime = &b
	s.mu.Unlock()
}

func (s *Session) Seed() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vals.SeedID == nil {
		return 0, false
	}
	return *s.vals.SeedID, true
}

func (s *Session) BeginTime() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vals.BeginTime == nil {
		return time.Time{}, false
	}
	return *s.vals.BeginTime, true
}

// Bind ties the session to a student. Switching student drops exam values.
func (s *Session) Bind(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vals.StudentID != studentID {
		s.vals = Values{StudentID: studentID}
	}
}

func (s *Session) StudentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals.StudentID
}

type ctxKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session of the request, or nil outside HTTP requests.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
