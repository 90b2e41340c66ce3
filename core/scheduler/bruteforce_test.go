package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bnbsched/core/model"
)

func TestBruteForceDefaultInstance(t *testing.T) {
	best, err := BruteForce(DefaultInstance().Tasks)
	require.NoError(t, err)
	assert.Equal(t, 7, best.UpperBound)
	assert.Len(t, best.Schedule, 4)
}

func TestBruteForceInfeasible(t *testing.T) {
	tasks := []model.Task{{ReleaseTime: 0, ProcessingTime: 2, Deadline: 1}}
	best, err := BruteForce(tasks)
	require.NoError(t, err)
	assert.Empty(t, best.Schedule)
	assert.Equal(t, 2, best.UpperBound)
}

func TestBruteForceEmpty(t *testing.T) {
	best, err := BruteForce(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, best.UpperBound)
	assert.Empty(t, best.Schedule)
}

func TestBruteForceRejectsLargeInstances(t *testing.T) {
	tasks := make([]model.Task, MaxBruteForceTasks+1)
	for i := range tasks {
		tasks[i] = model.Task{ReleaseTime: 0, ProcessingTime: 1, Deadline: len(tasks)}
	}
	_, err := BruteForce(tasks)
	assert.ErrorIs(t, err, ErrTooManyTasks)

	best, err := BruteForce(tasks[:MaxBruteForceTasks])
	require.NoError(t, err)
	assert.Equal(t, MaxBruteForceTasks, best.UpperBound)
	assert.Len(t, best.Schedule, MaxBruteForceTasks)
}
