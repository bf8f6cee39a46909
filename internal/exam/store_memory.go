package exam

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	questions map[int]Question
	seeds     map[int]Seed
	students  map[string]Student
}

// NewInMemoryStore returns a Store kept entirely in process memory (dev mode and tests).
func NewInMemoryStore() Store {
	return &memoryStore{
		questions: map[int]Question{},
		seeds:     map[int]Seed{},
		students:  map[string]Student{},
	}
}

func (m *memoryStore) ListQuestions(ctx context.Context) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetQuestion(ctx context.Context, id int) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, Errorf(KindNotFound, "get question", "question %d not found", id)
	}
	return q, nil
}

func (m *memoryStore) PutQuestions(ctx context.Context, qs []Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range qs {
		q.Choices = append([]string(nil), q.Choices...)
		m.questions[q.ID] = q
	}
	return nil
}

func (m *memoryStore) ListSeeds(ctx context.Context) ([]Seed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Seed, 0, len(m.seeds))
	for _, s := range m.seeds {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetSeed(ctx context.Context, id int) (Seed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.seeds[id]
	if !ok {
		return Seed{}, Errorf(KindNotFound, "get seed", "seed %d not found", id)
	}
	return s, nil
}

func (m *memoryStore) SaveSeeds(ctx context.Context, seeds []Seed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range seeds {
		s.QuestionIDs = append([]int(nil), s.QuestionIDs...)
		m.seeds[s.ID] = s
	}
	return nil
}

func (m *memoryStore) ListStudents(ctx context.Context) ([]Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) GetStudent(ctx context.Context, id string) (Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.students[id]
	if !ok {
		return Student{}, Errorf(KindNotFound, "get student", "student %s not found", id)
	}
	return s, nil
}

func (m *memoryStore) SaveStudents(ctx context.Context, students []Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range students {
		s.Choices = append([]int(nil), s.Choices...)
		m.students[s.ID] = s
	}
	return nil
}
