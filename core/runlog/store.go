// Package runlog persists finished solve runs so they can be listed and
// compared later. Two backends are provided: an append-only JSONL file with
// size based rotation and a SQLite database.
package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/bnbsched/core/model"
	"github.com/kilianp07/bnbsched/core/scheduler"
)

// RunRecord captures one solve: its input and outcome.
type RunRecord struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Instance  string           `json:"instance"`
	Mode      scheduler.Mode   `json:"mode"`
	Tasks     []model.Task     `json:"tasks"`
	Result    scheduler.Result `json:"result"`
}

// NewRecord stamps a result with a fresh run ID and the current time.
func NewRecord(instance string, mode scheduler.Mode, tasks []model.Task, res scheduler.Result) RunRecord {
	return RunRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Instance:  instance,
		Mode:      mode,
		Tasks:     tasks,
		Result:    res,
	}
}

// RunQuery defines filters for retrieving records. Zero values match all.
type RunQuery struct {
	Start        time.Time
	End          time.Time
	Instance     string
	FeasibleOnly bool
	// Limit keeps only the most recent records.
	Limit int
}

func (q RunQuery) match(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Instance != "" && r.Instance != q.Instance {
		return false
	}
	if q.FeasibleOnly && !r.Result.Feasible {
		return false
	}
	return true
}

// RunStore persists RunRecords and supports querying. Query returns records
// in chronological order.
type RunStore interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q RunQuery) ([]RunRecord, error)
	Close() error
}
