package scheduler

import "github.com/kilianp07/bnbsched/core/model"

// Slot is the execution window of one task in a replayed schedule.
type Slot struct {
	Task  int `json:"task"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Timetable lists slots in execution order.
type Timetable []Slot

// Replay runs schedule back to back, starting each task as soon as both the
// machine and the task are ready.
func Replay(schedule []int, tasks []model.Task) Timetable {
	tt := make(Timetable, 0, len(schedule))
	length := 0
	for _, idx := range schedule {
		task := tasks[idx]
		start := max(length, task.ReleaseTime)
		length = start + task.ProcessingTime
		tt = append(tt, Slot{Task: idx, Start: start, End: length})
	}
	return tt
}

// Makespan is the completion time of the last slot.
func (tt Timetable) Makespan() int {
	if len(tt) == 0 {
		return 0
	}
	return tt[len(tt)-1].End
}

// Feasible reports whether every slot ends by its task's deadline.
func (tt Timetable) Feasible(tasks []model.Task) bool {
	for _, s := range tt {
		if s.End > tasks[s.Task].Deadline {
			return false
		}
	}
	return true
}
