package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/mind-engage/history-contest/internal/exam"
	syncx "github.com/mind-engage/history-contest/internal/sync"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func renderSeeds(w io.Writer, seeds []exam.Seed) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Seed", "Created", "Questions", "Question IDs"})
	for _, sd := range seeds {
		ids := make([]string, len(sd.QuestionIDs))
		for i, id := range sd.QuestionIDs {
			ids[i] = strconv.Itoa(id)
		}
		table.Append([]string{
			strconv.Itoa(sd.ID),
			time.Unix(sd.CreatedAt, 0).UTC().Format("2006-01-02 15:04"),
			strconv.Itoa(len(sd.QuestionIDs)),
			strings.Join(ids, ","),
		})
	}
	table.Render()
}

func stateCell(s exam.TestState) string {
	switch s {
	case exam.Tested:
		return green(s.String())
	case exam.Testing:
		return yellow(s.String())
	default:
		return s.String()
	}
}

// renderResults prints finished students by score, then everyone else.
func renderResults(w io.Writer, students []exam.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if a.TestState != b.TestState {
			return a.TestState > b.TestState
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.ID < b.ID
	})
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "State", "Seed", "Score", "Finished", "Time"})
	for _, st := range students {
		seed, finished, took := "-", "-", "-"
		if st.SeedID != nil {
			seed = strconv.Itoa(*st.SeedID)
		}
		if st.DateTimeFinished != nil {
			finished = st.DateTimeFinished.UTC().Format("2006-01-02 15:04:05")
			took = st.TimeConsumed.Round(time.Second).String()
		}
		table.Append([]string{st.ID, st.Name, stateCell(st.TestState), seed, strconv.Itoa(st.Score), finished, took})
	}
	table.Render()
}

func renderEvents(w io.Writer, events []syncx.Event) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Seq", "Site", "Type", "Cycle", "Data", "Logged"})
	for _, e := range events {
		typ := e.Type
		if strings.HasSuffix(typ, ".failed") {
			typ = red(typ)
		}
		table.Append([]string{
			fmt.Sprintf("%d", e.Seq), e.SiteID, typ, e.Ref, e.DataJSON,
			time.Unix(e.CreatedAt, 0).UTC().Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
}
