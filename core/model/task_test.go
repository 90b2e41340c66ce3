package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskValid(t *testing.T) {
	task, err := NewTask(1, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, Task{ReleaseTime: 1, ProcessingTime: 2, Deadline: 5}, task)
}

func TestNewTaskRejects(t *testing.T) {
	cases := []struct {
		name                    string
		release, proc, deadline int
	}{
		{"negative release", -1, 2, 5},
		{"zero processing", 0, 0, 5},
		{"negative processing", 0, -3, 5},
		{"negative deadline", 0, 1, -1},
		{"deadline below processing", 0, 3, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewTask(c.release, c.proc, c.deadline)
			if !errors.Is(err, ErrInvalidTask) {
				t.Fatalf("expected ErrInvalidTask, got %v", err)
			}
		})
	}
}

func TestValidateAcceptsIsolatedInfeasibility(t *testing.T) {
	// release+processing exceeds the deadline but deadline >= processing:
	// well formed, simply unschedulable.
	task := Task{ReleaseTime: 3, ProcessingTime: 2, Deadline: 4}
	assert.NoError(t, task.Validate())
	assert.False(t, task.FeasibleAlone())
}

func TestValidateTasksIndex(t *testing.T) {
	err := ValidateTasks([]Task{{0, 1, 1}, {0, 2, 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.Contains(t, err.Error(), "task 1")
}

func TestEarliestCompletion(t *testing.T) {
	task := Task{ReleaseTime: 4, ProcessingTime: 2, Deadline: 7}
	assert.Equal(t, 6, task.EarliestCompletion(0))
	assert.Equal(t, 6, task.EarliestCompletion(4))
	assert.Equal(t, 8, task.EarliestCompletion(6))
}

func TestMaxDeadline(t *testing.T) {
	assert.Equal(t, 0, MaxDeadline(nil))
	assert.Equal(t, 7, MaxDeadline([]Task{{4, 2, 7}, {1, 1, 5}}))
}
