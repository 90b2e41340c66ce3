package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/bnbsched/core/model"
)

func TestReplayIdleGaps(t *testing.T) {
	tasks := []model.Task{
		{ReleaseTime: 5, ProcessingTime: 1, Deadline: 10},
		{ReleaseTime: 0, ProcessingTime: 2, Deadline: 10},
	}
	tt := Replay([]int{1, 0}, tasks)
	assert.Equal(t, Timetable{{Task: 1, Start: 0, End: 2}, {Task: 0, Start: 5, End: 6}}, tt)
	assert.Equal(t, 6, tt.Makespan())
	assert.True(t, tt.Feasible(tasks))
}

func TestReplayDetectsMissedDeadline(t *testing.T) {
	tasks := DefaultInstance().Tasks
	tt := Replay([]int{0, 1, 2, 3}, tasks)
	assert.False(t, tt.Feasible(tasks))
}

func TestReplayIsIdempotent(t *testing.T) {
	tasks := DefaultInstance().Tasks
	schedule := []int{3, 1, 2, 0}
	assert.Equal(t, Replay(schedule, tasks), Replay(schedule, tasks))
	assert.Equal(t, []int{3, 1, 2, 0}, schedule)
}

func TestReplayEmpty(t *testing.T) {
	tt := Replay(nil, nil)
	assert.Empty(t, tt)
	assert.Equal(t, 0, tt.Makespan())
	assert.True(t, tt.Feasible(nil))
}
