package scheduler

import (
	"slices"

	"github.com/kilianp07/bnbsched/core/model"
)

// BestSolution is the incumbent shared by every node of one search.
type BestSolution struct {
	UpperBound int   `json:"upper_bound"`
	Schedule   []int `json:"schedule"`
}

// NewBestSolution returns an empty incumbent whose bound exceeds any feasible
// makespan for tasks.
func NewBestSolution(tasks []model.Task) *BestSolution {
	return &BestSolution{UpperBound: model.MaxDeadline(tasks) + 1, Schedule: []int{}}
}

// Search explores every extension of the partial schedule and records
// improvements in best. It returns true when the caller must stop
// immediately because an optimal schedule has been established.
//
// scheduled and unscheduled are never modified.
func Search(scheduled, unscheduled []int, length int, tasks []model.Task, best *BestSolution) bool {
	e := &engine{tasks: tasks, best: best}
	return e.search(scheduled, unscheduled, length)
}

// SearchIterative is Search on an explicit stack. It visits nodes in the same
// order and leaves best in the same state.
func SearchIterative(scheduled, unscheduled []int, length int, tasks []model.Task, best *BestSolution) bool {
	e := &engine{tasks: tasks, best: best}
	return e.searchIterative(scheduled, unscheduled, length)
}

// engine carries the state that is constant across one search.
type engine struct {
	tasks []model.Task
	best  *BestSolution

	stats     *Stats
	onImprove func(upperBound int, schedule []int)

	// interrupted is polled every checkEvery nodes.
	interrupted func() bool
	checkEvery  int
	aborted     bool
}

// enter runs the pruning steps for one node. expand reports whether the node
// has children to explore; optimal is the decomposition flag returned once
// they are exhausted.
func (e *engine) enter(scheduled, unscheduled []int, length int) (expand, optimal bool) {
	if e.stats != nil {
		e.stats.Nodes++
		e.stats.MaxDepth = max(e.stats.MaxDepth, len(scheduled))
		if e.interrupted != nil && e.checkEvery > 0 && e.stats.Nodes%e.checkEvery == 0 && e.interrupted() {
			e.aborted = true
		}
	}
	if e.aborted {
		return false, false
	}

	minRelease, remaining := 0, 0
	for k, t := range unscheduled {
		task := e.tasks[t]
		if task.EarliestCompletion(length) > task.Deadline {
			if e.stats != nil {
				e.stats.DeadlinePrunes++
			}
			return false, false
		}
		if k == 0 || task.ReleaseTime < minRelease {
			minRelease = task.ReleaseTime
		}
		remaining += task.ProcessingTime
	}

	if len(unscheduled) == 0 {
		if e.stats != nil {
			e.stats.Leaves++
		}
		if length < e.best.UpperBound {
			e.best.UpperBound = length
			e.best.Schedule = slices.Clone(scheduled)
			if e.best.Schedule == nil {
				e.best.Schedule = []int{}
			}
			if e.stats != nil {
				e.stats.Improvements++
			}
			if e.onImprove != nil {
				e.onImprove(e.best.UpperBound, slices.Clone(e.best.Schedule))
			}
		}
		return false, false
	}

	if max(length, minRelease)+remaining >= e.best.UpperBound {
		if e.stats != nil {
			e.stats.BoundPrunes++
		}
		return false, false
	}

	return true, length <= minRelease
}

func (e *engine) search(scheduled, unscheduled []int, length int) bool {
	expand, optimal := e.enter(scheduled, unscheduled, length)
	if !expand {
		return e.aborted
	}
	for i, t := range unscheduled {
		if e.search(extend(scheduled, t), without(unscheduled, i), e.tasks[t].EarliestCompletion(length)) {
			return true
		}
	}
	if optimal {
		e.markShortcut(len(scheduled))
	}
	return optimal
}

type frame struct {
	scheduled   []int
	unscheduled []int
	length      int
	next        int
	optimal     bool
}

func (e *engine) searchIterative(scheduled, unscheduled []int, length int) bool {
	expand, optimal := e.enter(scheduled, unscheduled, length)
	if !expand {
		return e.aborted
	}
	stack := []frame{{scheduled: scheduled, unscheduled: unscheduled, length: length, optimal: optimal}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.unscheduled) {
			// A finished node only returns true through its own flag; a true
			// child would already have ended the loop.
			if top.optimal {
				e.markShortcut(len(top.scheduled))
				return true
			}
			stack = stack[:len(stack)-1]
			continue
		}
		i := top.next
		top.next++
		t := top.unscheduled[i]
		child := frame{
			scheduled:   extend(top.scheduled, t),
			unscheduled: without(top.unscheduled, i),
			length:      e.tasks[t].EarliestCompletion(top.length),
		}
		expand, optimal := e.enter(child.scheduled, child.unscheduled, child.length)
		if !expand {
			if e.aborted {
				return true
			}
			continue
		}
		child.optimal = optimal
		stack = append(stack, child)
	}
	return false
}

func (e *engine) markShortcut(depth int) {
	if e.stats != nil && e.stats.ShortcutDepth < 0 {
		e.stats.ShortcutDepth = depth
	}
}

func extend(scheduled []int, t int) []int {
	out := make([]int, len(scheduled)+1)
	copy(out, scheduled)
	out[len(scheduled)] = t
	return out
}

func without(unscheduled []int, i int) []int {
	out := make([]int, 0, len(unscheduled)-1)
	out = append(out, unscheduled[:i]...)
	return append(out, unscheduled[i+1:]...)
}
