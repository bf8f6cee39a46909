package cache

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncer_CycleReportsAndHooks(t *testing.T) {
	ctx := context.Background()
	c, tbl, _ := newTable(t)
	var buf bytes.Buffer
	s := NewSyncer(c, time.Hour, log.New(&buf, "", 0), nil)

	reports := make(chan CycleReport, 1)
	s.Reports = reports
	var hooked []CycleReport
	s.Hooks = append(s.Hooks, func(_ context.Context, r CycleReport) error {
		hooked = append(hooked, r)
		return errors.New("export unavailable")
	})

	require.NoError(t, tbl.Set(ctx, "a", item{ID: "a", Value: 1}))
	r := s.SyncCycle(ctx)
	assert.NoError(t, r.Err)
	assert.Equal(t, 1, r.Written)
	assert.Equal(t, 0, r.Pending)

	require.Len(t, hooked, 1)
	assert.Equal(t, r, <-reports)
	assert.Contains(t, buf.String(), "export unavailable")
}

func TestSyncer_FailureIsLoggedNotFatal(t *testing.T) {
	ctx := context.Background()
	c, tbl, st := newTable(t)
	st.fail = errors.New("timeout")
	var buf bytes.Buffer
	s := NewSyncer(c, time.Hour, log.New(&buf, "", 0), nil)

	require.NoError(t, tbl.Set(ctx, "a", item{ID: "a", Value: 1}))
	r := s.SyncCycle(ctx)
	require.Error(t, r.Err)
	assert.Equal(t, 1, r.Pending)
	assert.Contains(t, buf.String(), "cycle failed")

	// full channel never blocks a cycle
	s.Reports = make(chan CycleReport)
	st.fail = nil
	r = s.SyncCycle(ctx)
	assert.NoError(t, r.Err)
	assert.Equal(t, 0, r.Pending)
}

func TestSyncer_RunFlushesPeriodically(t *testing.T) {
	c, tbl, st := newTable(t)
	s := NewSyncer(c, 10*time.Millisecond, log.New(&bytes.Buffer{}, "", 0), nil)
	reports := make(chan CycleReport, 16)
	s.Reports = reports

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.NoError(t, tbl.Set(context.Background(), "a", item{ID: "a", Value: 9}))
	require.Eventually(t, func() bool {
		it, ok := st.row("a")
		return ok && it.Value == 9
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("syncer did not stop")
	}
}
