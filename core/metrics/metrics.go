package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/bnbsched/core/scheduler"
)

// SolveEvent describes one finished solve.
type SolveEvent struct {
	RunID    string
	Instance string
	Mode     scheduler.Mode
	Tasks    int
	Result   scheduler.Result
	Time     time.Time
}

// MetricsSink records solve events for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// Flusher is implemented by sinks that buffer or push and need a final
// flush before the process exits.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Closer is implemented by sinks holding connections.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }
