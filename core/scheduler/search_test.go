package scheduler

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bnbsched/core/model"
)

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func runSearch(tasks []model.Task) (*BestSolution, bool) {
	best := NewBestSolution(tasks)
	stop := Search([]int{}, indices(len(tasks)), 0, tasks, best)
	return best, stop
}

func TestSearchDefaultInstance(t *testing.T) {
	tasks := DefaultInstance().Tasks
	best, stop := runSearch(tasks)

	oracle, err := BruteForce(tasks)
	require.NoError(t, err)
	assert.Equal(t, oracle.UpperBound, best.UpperBound)
	assert.Equal(t, 7, best.UpperBound)
	assert.Equal(t, []int{3, 1, 2, 0}, best.Schedule)
	assert.True(t, stop, "root finishes before every release and must signal stop")

	tt := Replay(best.Schedule, tasks)
	assert.Equal(t, Timetable{{3, 0, 2}, {1, 2, 3}, {2, 3, 5}, {0, 5, 7}}, tt)
	assert.True(t, tt.Feasible(tasks))
}

func TestSearchSingleTask(t *testing.T) {
	tasks := []model.Task{{ReleaseTime: 0, ProcessingTime: 1, Deadline: 1}}
	best, _ := runSearch(tasks)
	assert.Equal(t, []int{0}, best.Schedule)
	assert.Equal(t, 1, best.UpperBound)
}

func TestSearchSingleInfeasibleTask(t *testing.T) {
	tasks := []model.Task{{ReleaseTime: 0, ProcessingTime: 2, Deadline: 1}}
	best, stop := runSearch(tasks)
	assert.False(t, stop)
	assert.Empty(t, best.Schedule)
	assert.Equal(t, 2, best.UpperBound, "sentinel must be untouched")
}

func TestSearchInfeasibleAmongOthers(t *testing.T) {
	tasks := []model.Task{
		{ReleaseTime: 0, ProcessingTime: 1, Deadline: 10},
		{ReleaseTime: 3, ProcessingTime: 2, Deadline: 4},
	}
	best, _ := runSearch(tasks)
	assert.Empty(t, best.Schedule)
	assert.Equal(t, 11, best.UpperBound)
}

func TestSearchEmptyTaskList(t *testing.T) {
	best, stop := runSearch(nil)
	assert.False(t, stop, "a leaf never signals stop")
	assert.Equal(t, 0, best.UpperBound)
	assert.NotNil(t, best.Schedule)
	assert.Empty(t, best.Schedule)
}

func TestSearchDoesNotMutateInputs(t *testing.T) {
	tasks := DefaultInstance().Tasks
	scheduled := []int{}
	unscheduled := []int{0, 1, 2, 3}
	best := NewBestSolution(tasks)
	Search(scheduled, unscheduled, 0, tasks, best)
	assert.Equal(t, []int{0, 1, 2, 3}, unscheduled)
	assert.Empty(t, scheduled)
}

func TestSearchFromPartialSchedule(t *testing.T) {
	tasks := DefaultInstance().Tasks
	// Starting with task 2 at [1,3) leaves task 3 unable to finish by 4.
	best := NewBestSolution(tasks)
	stop := Search([]int{2}, []int{0, 1, 3}, 3, tasks, best)
	assert.False(t, stop)
	assert.Empty(t, best.Schedule)
}

func TestSearchKeepsBetterIncumbent(t *testing.T) {
	tasks := DefaultInstance().Tasks
	best := &BestSolution{UpperBound: 7, Schedule: []int{3, 1, 2, 0}}
	Search([]int{}, indices(4), 0, tasks, best)
	assert.Equal(t, 7, best.UpperBound)
	assert.Equal(t, []int{3, 1, 2, 0}, best.Schedule)
}

func TestSearchBranchOrderFollowsCaller(t *testing.T) {
	// Two identical tasks: whichever is offered first wins the tie.
	tasks := []model.Task{
		{ReleaseTime: 0, ProcessingTime: 1, Deadline: 5},
		{ReleaseTime: 0, ProcessingTime: 1, Deadline: 5},
	}
	best := NewBestSolution(tasks)
	Search([]int{}, []int{1, 0}, 0, tasks, best)
	assert.Equal(t, []int{1, 0}, best.Schedule)
}

func TestSearchMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	feasible := 0
	for run := 0; run < 300; run++ {
		n := 1 + r.IntN(MaxBruteForceTasks)
		tasks := RandomInstance(r, n, DefaultGeneratorConfig).Tasks
		oracle, err := BruteForce(tasks)
		require.NoError(t, err)
		best, _ := runSearch(tasks)

		require.Equal(t, len(oracle.Schedule) == 0, len(best.Schedule) == 0, "feasibility mismatch on %+v", tasks)
		require.Equal(t, oracle.UpperBound, best.UpperBound, "makespan mismatch on %+v", tasks)
		if len(best.Schedule) == 0 {
			continue
		}
		feasible++
		require.ElementsMatch(t, indices(n), best.Schedule)
		tt := Replay(best.Schedule, tasks)
		require.True(t, tt.Feasible(tasks), "infeasible schedule %v for %+v", best.Schedule, tasks)
		require.Equal(t, best.UpperBound, tt.Makespan())
	}
	assert.Greater(t, feasible, 0)
}

func TestSearchIterativeMatchesRecursive(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 11))
	for run := 0; run < 200; run++ {
		tasks := RandomInstance(r, 1+r.IntN(MaxBruteForceTasks), DefaultGeneratorConfig).Tasks

		rec := NewBestSolution(tasks)
		recStop := Search([]int{}, indices(len(tasks)), 0, tasks, rec)
		it := NewBestSolution(tasks)
		itStop := SearchIterative([]int{}, indices(len(tasks)), 0, tasks, it)

		require.Equal(t, rec, it, "tasks %+v", tasks)
		require.Equal(t, recStop, itStop, "tasks %+v", tasks)
	}
}

func TestEngineStatsDefaultInstance(t *testing.T) {
	tasks := DefaultInstance().Tasks
	for _, iterative := range []bool{false, true} {
		stats := Stats{ShortcutDepth: -1}
		e := &engine{tasks: tasks, best: NewBestSolution(tasks), stats: &stats}
		if iterative {
			e.searchIterative([]int{}, indices(4), 0)
		} else {
			e.search([]int{}, indices(4), 0)
		}
		assert.Equal(t, Stats{
			Nodes:          11,
			DeadlinePrunes: 4,
			BoundPrunes:    2,
			Leaves:         1,
			Improvements:   1,
			MaxDepth:       4,
			ShortcutDepth:  0,
		}, stats, "iterative=%t", iterative)
	}
}
