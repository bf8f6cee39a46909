package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/mind-engage/history-contest/internal/exam"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import question banks and student rosters from YAML",
}

var importQuestionsCmd = &cobra.Command{
	Use:   "questions FILE",
	Short: "Insert or update questions",
	Long: `Reads a YAML list of questions:

  - id: 1
    type: choice
    content: Who was the first Roman emperor?
    choices: [Augustus, Nero, Caligula, Trajan]
    answer: 0
    points: 3`,
	Args: cobra.ExactArgs(1),
	RunE: runImportQuestions,
}

var importStudentsCmd = &cobra.Command{
	Use:   "students FILE",
	Short: "Insert students or update names and passwords",
	Long: `Reads a YAML list of students:

  - id: "20240001"
    name: Ann Example
    password: plain-text-password

Existing students keep their exam state; only name and password change.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportStudents,
}

var bcryptCost int

func init() {
	importStudentsCmd.Flags().IntVar(&bcryptCost, "cost", bcrypt.DefaultCost, "bcrypt cost for password hashes")
	importCmd.AddCommand(importQuestionsCmd, importStudentsCmd)
}

type questionRow struct {
	ID      int      `yaml:"id"`
	Type    string   `yaml:"type"`
	Content string   `yaml:"content"`
	Choices []string `yaml:"choices"`
	Answer  int      `yaml:"answer"`
	Points  int      `yaml:"points"`
}

type studentRow struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

func parseQuestions(r io.Reader) ([]exam.Question, error) {
	var rows []questionRow
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	seen := map[int]bool{}
	out := make([]exam.Question, 0, len(rows))
	for i, q := range rows {
		if q.ID <= 0 {
			return nil, fmt.Errorf("question #%d: id must be positive", i+1)
		}
		if seen[q.ID] {
			return nil, fmt.Errorf("question %d: duplicate id", q.ID)
		}
		seen[q.ID] = true
		if q.Points <= 0 {
			return nil, fmt.Errorf("question %d: points must be positive", q.ID)
		}
		if q.Type == "" {
			q.Type = "choice"
			if len(q.Choices) == 0 {
				q.Type = "truefalse"
			}
		}
		if q.Type == "truefalse" && len(q.Choices) == 0 {
			q.Choices = []string{"true", "false"}
		}
		if q.Answer < 0 || q.Answer >= len(q.Choices) {
			return nil, fmt.Errorf("question %d: answer %d outside %d choices", q.ID, q.Answer, len(q.Choices))
		}
		out = append(out, exam.Question{
			ID: q.ID, Type: q.Type, Content: q.Content, Choices: q.Choices, Answer: q.Answer, Points: q.Points,
		})
	}
	return out, nil
}

func parseStudents(r io.Reader) ([]studentRow, error) {
	var rows []studentRow
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("parse students: %w", err)
	}
	seen := map[string]bool{}
	for i, s := range rows {
		if s.ID == "" {
			return nil, fmt.Errorf("student #%d: id required", i+1)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("student %s: duplicate id", s.ID)
		}
		seen[s.ID] = true
	}
	return rows, nil
}

// mergeStudents applies imported rows onto existing records without touching exam state.
func mergeStudents(ctx context.Context, store exam.Store, rows []studentRow, cost int) ([]exam.Student, int, error) {
	out := make([]exam.Student, 0, len(rows))
	created := 0
	for _, row := range rows {
		st, err := store.GetStudent(ctx, row.ID)
		switch {
		case exam.KindOf(err) == exam.KindNotFound:
			st = exam.Student{ID: row.ID}
			created++
		case err != nil:
			return nil, 0, err
		}
		if row.Name != "" {
			st.Name = row.Name
		}
		if row.Password != "" {
			h, err := bcrypt.GenerateFromPassword([]byte(row.Password), cost)
			if err != nil {
				return nil, 0, fmt.Errorf("student %s: %w", row.ID, err)
			}
			st.PasswordHash = string(h)
		}
		out = append(out, st)
	}
	return out, created, nil
}

func runImportQuestions(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	qs, err := parseQuestions(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, dbh, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer dbh.Close()
	if err := store.PutQuestions(ctx, qs); err != nil {
		return err
	}
	color.Green("Imported %d questions", len(qs))
	return nil
}

func runImportStudents(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	rows, err := parseStudents(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, dbh, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer dbh.Close()
	students, created, err := mergeStudents(ctx, store, rows, bcryptCost)
	if err != nil {
		return err
	}
	if err := store.SaveStudents(ctx, students); err != nil {
		return err
	}
	color.Green("Imported %d students (%d new, %d updated)", len(students), created, len(students)-created)
	return nil
}
