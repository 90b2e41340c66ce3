package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTask is returned when a task carries attributes the search cannot
// reason about.
var ErrInvalidTask = errors.New("invalid task")

// Task is a unit of non-preemptive work on a single machine.
type Task struct {
	ReleaseTime    int `json:"release_time" yaml:"release_time"`       // earliest start
	ProcessingTime int `json:"processing_time" yaml:"processing_time"` // duration, > 0
	Deadline       int `json:"deadline" yaml:"deadline"`               // latest completion
}

// NewTask builds a validated Task.
func NewTask(release, processing, deadline int) (Task, error) {
	t := Task{ReleaseTime: release, ProcessingTime: processing, Deadline: deadline}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate rejects negative times, non-positive durations and deadlines that
// are shorter than the task itself.
func (t Task) Validate() error {
	switch {
	case t.ReleaseTime < 0:
		return fmt.Errorf("%w: negative release time %d", ErrInvalidTask, t.ReleaseTime)
	case t.ProcessingTime <= 0:
		return fmt.Errorf("%w: processing time must be positive, got %d", ErrInvalidTask, t.ProcessingTime)
	case t.Deadline < 0:
		return fmt.Errorf("%w: negative deadline %d", ErrInvalidTask, t.Deadline)
	case t.Deadline < t.ProcessingTime:
		return fmt.Errorf("%w: deadline %d shorter than processing time %d", ErrInvalidTask, t.Deadline, t.ProcessingTime)
	}
	return nil
}

// EarliestCompletion returns the completion time of t if it is started as
// soon as possible once the machine is free at length.
func (t Task) EarliestCompletion(length int) int {
	return max(length, t.ReleaseTime) + t.ProcessingTime
}

// FeasibleAlone reports whether t can meet its deadline on an idle machine.
func (t Task) FeasibleAlone() bool {
	return t.ReleaseTime+t.ProcessingTime <= t.Deadline
}

// ValidateTasks validates every task and reports the first offending index.
func ValidateTasks(tasks []Task) error {
	for i, t := range tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

// MaxDeadline returns the largest deadline in tasks, or 0 for an empty list.
func MaxDeadline(tasks []Task) int {
	m := 0
	for _, t := range tasks {
		if t.Deadline > m {
			m = t.Deadline
		}
	}
	return m
}
