package syncx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/db"
)

func TestCycleHook_AppendsEvents(t *testing.T) {
	ctx := context.Background()
	dbh, err := db.Open(ctx, db.DriverSQLite, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	defer dbh.Close()

	repo := NewEventRepo(dbh)
	hook := CycleHook(repo, "school-1")
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, hook(ctx, cache.CycleReport{Started: start}))
	require.NoError(t, hook(ctx, cache.CycleReport{Started: start, Written: 3, Duration: 40 * time.Millisecond}))
	require.NoError(t, hook(ctx, cache.CycleReport{Started: start.Add(time.Minute), Pending: 2, Err: errors.New("db down")}))

	events, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2, "idle cycles are not recorded")
	assert.Equal(t, "sync.failed", events[0].Type)
	assert.Contains(t, events[0].DataJSON, "db down")
	assert.Equal(t, "sync.ok", events[1].Type)
	assert.JSONEq(t, `{"written":3,"pending":0,"duration_ms":40}`, events[1].DataJSON)
	assert.Equal(t, "school-1", events[1].SiteID)
	assert.Equal(t, "2024-03-01T08:00:00Z", events[1].Ref)

	failed, err := repo.Search(ctx, "failed", 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, events[0].Seq, failed[0].Seq)

	byRef, err := repo.Search(ctx, "T08:01", 10)
	require.NoError(t, err)
	require.Len(t, byRef, 1)
	assert.Equal(t, "sync.failed", byRef[0].Type)

	all, err := repo.Search(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
