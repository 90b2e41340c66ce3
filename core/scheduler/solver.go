package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/bnbsched/core/logger"
	"github.com/kilianp07/bnbsched/core/model"
)

// Mode selects the search engine implementation.
type Mode string

const (
	ModeRecursive Mode = "recursive"
	ModeIterative Mode = "iterative"
)

// ParseMode maps a configuration value to a Mode. Empty means recursive.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRecursive:
		return ModeRecursive, nil
	case ModeIterative:
		return ModeIterative, nil
	}
	return "", fmt.Errorf("unknown solver mode %q", s)
}

// DefaultCheckInterval is the number of nodes between two cancellation checks.
const DefaultCheckInterval = 4096

// Stats counts what the search did.
type Stats struct {
	Nodes          int `json:"nodes"`
	DeadlinePrunes int `json:"deadline_prunes"`
	BoundPrunes    int `json:"bound_prunes"`
	Leaves         int `json:"leaves"`
	Improvements   int `json:"improvements"`
	MaxDepth       int `json:"max_depth"`
	// ShortcutDepth is the depth of the node whose decomposition flag ended
	// the search, or -1.
	ShortcutDepth int `json:"shortcut_depth"`
}

// Observer is notified each time the incumbent improves. Bounds arrive in
// strictly decreasing order.
type Observer interface {
	OnImprove(upperBound int, schedule []int)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(upperBound int, schedule []int)

func (f ObserverFunc) OnImprove(upperBound int, schedule []int) { f(upperBound, schedule) }

// Result is the outcome of one Solve call.
type Result struct {
	Schedule  []int         `json:"schedule"`
	Makespan  int           `json:"makespan"`
	Feasible  bool          `json:"feasible"`
	Timetable Timetable     `json:"timetable"`
	Stats     Stats         `json:"stats"`
	Duration  time.Duration `json:"duration"`
	// EarlyExit is the engine's return value: the decomposition shortcut
	// ended the search.
	EarlyExit bool `json:"early_exit"`
	// Interrupted is set when the context ended the search; the schedule is
	// then the best found so far and not necessarily optimal.
	Interrupted bool `json:"interrupted"`
}

// Solver runs the branch and bound engine with validation and bookkeeping.
type Solver struct {
	mode       Mode
	observers  []Observer
	log        logger.Logger
	checkEvery int
}

// Option configures a Solver.
type Option func(*Solver)

// WithMode selects the recursive or iterative engine.
func WithMode(m Mode) Option { return func(s *Solver) { s.mode = m } }

// WithObserver registers an improvement observer.
func WithObserver(o Observer) Option {
	return func(s *Solver) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l logger.Logger) Option { return func(s *Solver) { s.log = logger.OrNop(l) } }

// WithCheckInterval sets how many nodes are expanded between context checks.
func WithCheckInterval(n int) Option { return func(s *Solver) { s.checkEvery = n } }

// NewSolver returns a Solver using the recursive engine by default.
func NewSolver(opts ...Option) *Solver {
	s := &Solver{mode: ModeRecursive, log: logger.NopLogger{}, checkEvery: DefaultCheckInterval}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mode returns the engine the solver runs.
func (s *Solver) Mode() Mode { return s.mode }

// Solve finds a minimum makespan schedule for tasks. An infeasible instance
// is not an error: Result.Feasible is false and the schedule is empty.
// If ctx ends first, the incumbent is returned along with ctx.Err().
func (s *Solver) Solve(ctx context.Context, tasks []model.Task) (Result, error) {
	if err := model.ValidateTasks(tasks); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	best := NewBestSolution(tasks)
	sentinel := best.UpperBound
	stats := Stats{ShortcutDepth: -1}
	e := &engine{
		tasks:       tasks,
		best:        best,
		stats:       &stats,
		interrupted: func() bool { return ctx.Err() != nil },
		checkEvery:  s.checkEvery,
		onImprove: func(ub int, schedule []int) {
			s.log.Debugw("incumbent improved", map[string]any{"upper_bound": ub, "schedule": schedule})
			for _, o := range s.observers {
				o.OnImprove(ub, schedule)
			}
		},
	}

	unscheduled := make([]int, len(tasks))
	for i := range unscheduled {
		unscheduled[i] = i
	}
	var stop bool
	if s.mode == ModeIterative {
		stop = e.searchIterative([]int{}, unscheduled, 0)
	} else {
		stop = e.search([]int{}, unscheduled, 0)
	}

	res := Result{
		Schedule:    []int{},
		Stats:       stats,
		Duration:    time.Since(start),
		EarlyExit:   stop && !e.aborted,
		Interrupted: e.aborted,
	}
	if best.UpperBound < sentinel {
		res.Feasible = true
		res.Schedule = best.Schedule
		res.Makespan = best.UpperBound
		res.Timetable = Replay(best.Schedule, tasks)
	}
	s.log.Infof("solved %d tasks: feasible=%t makespan=%d nodes=%d in %s",
		len(tasks), res.Feasible, res.Makespan, stats.Nodes, res.Duration)
	if e.aborted {
		return res, fmt.Errorf("search interrupted after %d nodes: %w", stats.Nodes, ctx.Err())
	}
	return res, nil
}
