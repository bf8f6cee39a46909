package exam

import "context"

// Store is the durable side of the contest: questions, seeds and students.
// Every call is expected to honour ctx deadlines.
type Store interface {
	ListQuestions(ctx context.Context) ([]Question, error)
	GetQuestion(ctx context.Context, id int) (Question, error)
	PutQuestions(ctx context.Context, qs []Question) error

	ListSeeds(ctx context.Context) ([]Seed, error)
	GetSeed(ctx context.Context, id int) (Seed, error)
	SaveSeeds(ctx context.Context, seeds []Seed) error

	ListStudents(ctx context.Context) ([]Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	SaveStudents(ctx context.Context, students []Student) error
}
