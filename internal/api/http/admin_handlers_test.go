package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/history-contest/internal/exam"
	syncx "github.com/mind-engage/history-contest/internal/sync"
)

type fakeEvents struct{ lastQ string }

func (f *fakeEvents) Search(_ context.Context, q string, limit int) ([]syncx.Event, error) {
	f.lastQ = q
	return []syncx.Event{{Seq: 2, Type: "sync.failed", DataJSON: `{"pending":1}`}}, nil
}

func TestAdminEventsHandler(t *testing.T) {
	ev := &fakeEvents{}
	rec := httptest.NewRecorder()
	AdminEventsHandler(ev)(rec, httptest.NewRequest(http.MethodGet, "/api/Admin/Events?q=failed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "failed", ev.lastQ)

	var out []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "sync.failed", out[0]["typ"])
}

func TestAdminStudentsHandler_FiltersByState(t *testing.T) {
	ctx := context.Background()
	store := exam.NewInMemoryStore()
	require.NoError(t, store.SaveStudents(ctx, []exam.Student{
		{ID: "a", TestState: exam.Tested, Score: 4},
		{ID: "b", TestState: exam.Testing},
	}))

	rec := httptest.NewRecorder()
	AdminStudentsHandler(store)(rec, httptest.NewRequest(http.MethodGet, "/api/Admin/Students?state=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out []studentRow
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, 4, out[0].Score)

	rec = httptest.NewRecorder()
	AdminStudentsHandler(store)(rec, httptest.NewRequest(http.MethodGet, "/api/Admin/Students", nil))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Len(t, out, 2)
}
