package cache

import (
	"context"
	"log"
	"time"
)

// CycleReport describes one synchronization cycle.
type CycleReport struct {
	Started  time.Time
	Duration time.Duration
	Written  int   // entries persisted
	Pending  int   // entries still dirty afterwards
	Err      error // nil, or the joined *SyncError values
}

// Hook runs after every cycle, successful or not.
type Hook func(ctx context.Context, r CycleReport) error

// Syncer periodically flushes a Cache. The next cycle is scheduled only after the
// previous one returned, so cycles never overlap.
type Syncer struct {
	Cache    *Cache
	Interval time.Duration
	Now      Clock
	Log      *log.Logger
	Hooks    []Hook

	// Reports, when set, receives every report. Sends never block; a full channel drops the report.
	Reports chan<- CycleReport
}

func NewSyncer(c *Cache, interval time.Duration, logger *log.Logger, now Clock) *Syncer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Syncer{Cache: c, Interval: interval, Now: now, Log: logger}
}

// SyncCycle flushes every table once. Failures are logged and reported, never returned.
func (s *Syncer) SyncCycle(ctx context.Context) CycleReport {
	start := s.Now()
	n, err := s.Cache.Flush(ctx)
	r := CycleReport{
		Started:  start,
		Duration: s.Now().Sub(start),
		Written:  n,
		Pending:  s.Cache.Dirty(),
		Err:      err,
	}
	if err != nil {
		s.Log.Printf("sync: cycle failed after writing %d entries, %d pending: %v", r.Written, r.Pending, err)
	} else if r.Written > 0 {
		s.Log.Printf("sync: wrote %d entries in %s", r.Written, r.Duration)
	}
	for _, h := range s.Hooks {
		if herr := h(ctx, r); herr != nil {
			s.Log.Printf("sync: hook: %v", herr)
		}
	}
	if s.Reports != nil {
		select {
		case s.Reports <- r:
		default:
		}
	}
	return r
}

// Run loops until ctx is cancelled. A cycle already running when ctx is
// cancelled completes before Run returns.
func (s *Syncer) Run(ctx context.Context) error {
	t := time.NewTimer(s.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.SyncCycle(context.WithoutCancel(ctx))
			t.Reset(s.Interval)
		}
	}
}
