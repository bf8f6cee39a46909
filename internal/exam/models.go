package exam

import "time"

// TestState is the lifecycle position of a student.
type TestState int

const (
	Untested TestState = 0
	Testing  TestState = 1
	Tested   TestState = 2
)

func (s TestState) String() string {
	switch s {
	case Untested:
		return "untested"
	case Testing:
		return "testing"
	case Tested:
		return "tested"
	default:
		return "unknown"
	}
}

type Question struct {
	ID      int      `json:"id"`
	Type    string   `json:"type"` // choice | truefalse
	Content string   `json:"content"`
	Choices []string `json:"choices,omitempty"`
	Answer  int      `json:"answer"`
	Points  int      `json:"points"`
}

// QuestionView is a question as served to a student taking the exam (no answer).
type QuestionView struct {
	ID      int      `json:"id"`
	Type    string   `json:"type"`
	Content string   `json:"content"`
	Choices []string `json:"choices,omitempty"`
	Points  int      `json:"points"`
}

func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Type: q.Type, Content: q.Content, Choices: q.Choices, Points: q.Points}
}

type Seed struct {
	ID          int   `json:"id"`
	QuestionIDs []int `json:"question_ids"`
	CreatedAt   int64 `json:"created_at,omitempty"`
}

type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	TestState    TestState `json:"test_state"`
	SeedID       *int      `json:"seed_id,omitempty"`
	Choices      []int     `json:"choices,omitempty"`
	Score        int       `json:"score"`

	TimeStarted      *time.Time    `json:"time_started,omitempty"`
	DateTimeFinished *time.Time    `json:"date_time_finished,omitempty"`
	TimeConsumed     time.Duration `json:"time_consumed"`
}

type SubmittedAnswer struct {
	ID     int `json:"id"`
	Answer int `json:"answer"`
}

type CorrectAnswer struct {
	ID     int `json:"id"`
	Answer int `json:"answer"`
	Points int `json:"points"`
}

type ResultDetail struct {
	ID      int `json:"id"`
	Correct int `json:"correct"`
	Submit  int `json:"submit"`
}

type Result struct {
	Score        int            `json:"score"`
	TimeFinished time.Time      `json:"timeFinished"`
	TimeConsumed time.Duration  `json:"timeConsumed"`
	Details      []ResultDetail `json:"details"`
}
