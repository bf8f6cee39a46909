package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/history-contest/internal/db"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(dbh *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: dbh, driver: driver}
}

func (s *SQLStore) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,type,content,choices_json,answer,points FROM questions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,type,content,choices_json,answer,points FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, Errorf(KindNotFound, "get question", "question %d not found", id)
	}
	return q, err
}

func (s *SQLStore) PutQuestions(ctx context.Context, qs []Question) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, q := range qs {
			cj, err := json.Marshal(q.Choices)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO questions (id,type,content,choices_json,answer,points)
				VALUES ($1,$2,$3,$4,$5,$6)
				ON CONFLICT (id) DO UPDATE SET type=EXCLUDED.type, content=EXCLUDED.content,
				choices_json=EXCLUDED.choices_json, answer=EXCLUDED.answer, points=EXCLUDED.points`,
				q.ID, q.Type, q.Content, string(cj), q.Answer, q.Points)
			if err != nil {
				return fmt.Errorf("put question %d: %w", q.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) ListSeeds(ctx context.Context) ([]Seed, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,question_ids_json,created_at FROM seeds ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Seed
	for rows.Next() {
		sd, err := scanSeed(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sd)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSeed(ctx context.Context, id int) (Seed, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,question_ids_json,created_at FROM seeds WHERE id=$1`, id)
	sd, err := scanSeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Seed{}, Errorf(KindNotFound, "get seed", "seed %d not found", id)
	}
	return sd, err
}

// SaveSeeds inserts new seeds. Seeds are immutable, so an existing id is left untouched.
func (s *SQLStore) SaveSeeds(ctx context.Context, seeds []Seed) error {
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, sd := range seeds {
			qj, err := json.Marshal(sd.QuestionIDs)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO seeds (id,question_ids_json,created_at)
				VALUES ($1,$2,$3) ON CONFLICT (id) DO NOTHING`,
				sd.ID, string(qj), sd.CreatedAt)
			if err != nil {
				return fmt.Errorf("save seed %d: %w", sd.ID, err)
			}
		}
		return nil
	})
}

const studentColumns = `id,name,password_hash,test_state,seed_id,choices_json,score,time_started,date_time_finished,time_consumed_ms`

func (s *SQLStore) ListStudents(ctx context.Context) ([]Student, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetStudent(ctx context.Context, id string) (Student, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id=$1`, id)
	st, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, Errorf(KindNotFound, "get student", "student %s not found", id)
	}
	return st, err
}

// SaveStudents upserts all given students in one transaction.
func (s *SQLStore) SaveStudents(ctx context.Context, students []Student) error {
	now := time.Now().Unix()
	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, st := range students {
			cj, err := json.Marshal(nonNilInts(st.Choices))
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `INSERT INTO students (`+studentColumns+`,updated_at)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
				ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, password_hash=EXCLUDED.password_hash,
				test_state=EXCLUDED.test_state, seed_id=EXCLUDED.seed_id, choices_json=EXCLUDED.choices_json,
				score=EXCLUDED.score, time_started=EXCLUDED.time_started,
				date_time_finished=EXCLUDED.date_time_finished, time_consumed_ms=EXCLUDED.time_consumed_ms,
				updated_at=EXCLUDED.updated_at`,
				st.ID, st.Name, st.PasswordHash, int(st.TestState), nullInt(st.SeedID), string(cj), st.Score,
				nullMillis(st.TimeStarted), nullMillis(st.DateTimeFinished), st.TimeConsumed.Milliseconds(), now)
			if err != nil {
				return fmt.Errorf("save student %s: %w", st.ID, err)
			}
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r scanner) (Question, error) {
	var q Question
	var cj string
	if err := r.Scan(&q.ID, &q.Type, &q.Content, &cj, &q.Answer, &q.Points); err != nil {
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(cj), &q.Choices); err != nil {
		return Question{}, fmt.Errorf("question %d choices: %w", q.ID, err)
	}
	return q, nil
}

func scanSeed(r scanner) (Seed, error) {
	var sd Seed
	var qj string
	if err := r.Scan(&sd.ID, &qj, &sd.CreatedAt); err != nil {
		return Seed{}, err
	}
	if err := json.Unmarshal([]byte(qj), &sd.QuestionIDs); err != nil {
		return Seed{}, fmt.Errorf("seed %d question ids: %w", sd.ID, err)
	}
	return sd, nil
}

func scanStudent(r scanner) (Student, error) {
	var (
		st                Student
		state             int
		seedID            sql.NullInt64
		cj                string
		started, finished sql.NullInt64
		consumedMS        int64
	)
	if err := r.Scan(&st.ID, &st.Name, &st.PasswordHash, &state, &seedID, &cj, &st.Score,
		&started, &finished, &consumedMS); err != nil {
		return Student{}, err
	}
	st.TestState = TestState(state)
	if seedID.Valid {
		id := int(seedID.Int64)
		st.SeedID = &id
	}
	if err := json.Unmarshal([]byte(cj), &st.Choices); err != nil {
		return Student{}, fmt.Errorf("student %s choices: %w", st.ID, err)
	}
	if len(st.Choices) == 0 {
		st.Choices = nil
	}
	st.TimeStarted = fromMillis(started)
	st.DateTimeFinished = fromMillis(finished)
	st.TimeConsumed = time.Duration(consumedMS) * time.Millisecond
	return st, nil
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}
