package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/report"
	syncx "github.com/mind-engage/history-contest/internal/sync"
)

// EventSearcher reads the sync audit log.
type EventSearcher interface {
	Search(ctx context.Context, q string, limit int) ([]syncx.Event, error)
}

// GET /api/Admin/Events?q=failed&limit=100
func AdminEventsHandler(events EventSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)

		list, err := events.Search(r.Context(), q, limit)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
			return
		}
		out := make([]map[string]any, 0, len(list))
		for _, e := range list {
			out = append(out, map[string]any{
				"seq":        e.Seq,
				"site_id":    e.SiteID,
				"typ":        e.Type,
				"ref":        e.Ref,
				"data":       e.DataJSON,
				"created_at": time.Unix(e.CreatedAt, 0).UTC(),
			})
		}
		respondJSON(w, http.StatusOK, out)
	}
}

type studentRow struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	TestState        int        `json:"testState"`
	SeedID           *int       `json:"seedId,omitempty"`
	Score            int        `json:"score"`
	DateTimeFinished *time.Time `json:"dateTimeFinished,omitempty"`
	TimeConsumedSec  int64      `json:"timeConsumedSeconds"`
}

// GET /api/Admin/Students?state=2
// Lists students as last synchronized to the durable store.
func AdminStudentsHandler(students report.StudentLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := parseIntDefault(r.URL.Query().Get("state"), -1)

		list, err := students.ListStudents(r.Context())
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
			return
		}
		out := make([]studentRow, 0, len(list))
		for _, st := range list {
			if state >= 0 && st.TestState != exam.TestState(state) {
				continue
			}
			out = append(out, studentRow{
				ID: st.ID, Name: st.Name, TestState: int(st.TestState), SeedID: st.SeedID, Score: st.Score,
				DateTimeFinished: st.DateTimeFinished, TimeConsumedSec: int64(st.TimeConsumed / time.Second),
			})
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
