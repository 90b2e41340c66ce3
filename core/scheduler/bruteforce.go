package scheduler

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/kilianp07/bnbsched/core/model"
)

// MaxBruteForceTasks caps the exhaustive oracle at 8! replays.
const MaxBruteForceTasks = 8

// ErrTooManyTasks is returned by BruteForce above MaxBruteForceTasks.
var ErrTooManyTasks = errors.New("too many tasks for brute force")

// BruteForce replays all permutations of tasks and returns the first one with
// the smallest feasible makespan. It is the reference the branch and bound
// is checked against.
func BruteForce(tasks []model.Task) (*BestSolution, error) {
	n := len(tasks)
	if n > MaxBruteForceTasks {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyTasks, n, MaxBruteForceTasks)
	}
	best := NewBestSolution(tasks)
	if n == 0 {
		best.UpperBound = 0
		return best, nil
	}
	gen := combin.NewPermutationGenerator(n, n)
	perm := make([]int, n)
	for gen.Next() {
		perm = gen.Permutation(perm)
		tt := Replay(perm, tasks)
		if !tt.Feasible(tasks) {
			continue
		}
		if ms := tt.Makespan(); ms < best.UpperBound {
			best.UpperBound = ms
			best.Schedule = append(best.Schedule[:0], perm...)
		}
	}
	return best, nil
}
