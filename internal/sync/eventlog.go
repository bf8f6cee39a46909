package syncx

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mind-engage/history-contest/internal/cache"
)

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Ref       string
	DataJSON  string
	CreatedAt int64
}

// EventRepo is the append-only audit log in the event_log table.
type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, ref, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Ref, e.DataJSON, time.Now().Unix())
	return err
}

// Recent returns the newest events first.
func (r *EventRepo) Recent(ctx context.Context, limit int) ([]Event, error) {
	return r.Search(ctx, "", limit)
}

// Search returns the newest events whose type or ref contains q.
func (r *EventRepo) Search(ctx context.Context, q string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, ref, data, created_at FROM event_log
		 WHERE typ LIKE $1 OR ref LIKE $1
		 ORDER BY seq DESC LIMIT $2`, "%"+q+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Ref, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type cycleData struct {
	Written    int    `json:"written"`
	Pending    int    `json:"pending"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// CycleHook records every sync cycle in the event log.
func CycleHook(repo *EventRepo, siteID string) cache.Hook {
	return func(ctx context.Context, r cache.CycleReport) error {
		if r.Written == 0 && r.Err == nil {
			return nil
		}
		d := cycleData{Written: r.Written, Pending: r.Pending, DurationMS: r.Duration.Milliseconds()}
		typ := "sync.ok"
		if r.Err != nil {
			typ = "sync.failed"
			d.Error = r.Err.Error()
		}
		b, err := json.Marshal(d)
		if err != nil {
			return err
		}
		return repo.Append(ctx, Event{
			SiteID:   siteID,
			Type:     typ,
			Ref:      r.Started.UTC().Format(time.RFC3339),
			DataJSON: string(b),
		})
	}
}
