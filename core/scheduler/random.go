package scheduler

import (
	"fmt"
	"math/rand/v2"

	"github.com/kilianp07/bnbsched/core/model"
)

// GeneratorConfig bounds the attributes of generated tasks.
type GeneratorConfig struct {
	MaxRelease    int `json:"max_release"`
	MaxProcessing int `json:"max_processing"`
	MaxSlack      int `json:"max_slack"`
}

// DefaultGeneratorConfig yields a mix of feasible and infeasible instances.
var DefaultGeneratorConfig = GeneratorConfig{MaxRelease: 10, MaxProcessing: 5, MaxSlack: 12}

// RandomInstance draws n valid tasks. Each deadline is the task's release
// plus processing time plus a random slack, so every task is feasible on its
// own but not necessarily together.
func RandomInstance(r *rand.Rand, n int, cfg GeneratorConfig) Instance {
	if cfg.MaxProcessing <= 0 {
		cfg.MaxProcessing = 1
	}
	tasks := make([]model.Task, n)
	for i := range tasks {
		release := 0
		if cfg.MaxRelease > 0 {
			release = r.IntN(cfg.MaxRelease + 1)
		}
		proc := 1 + r.IntN(cfg.MaxProcessing)
		slack := 0
		if cfg.MaxSlack > 0 {
			slack = r.IntN(cfg.MaxSlack + 1)
		}
		tasks[i] = model.Task{ReleaseTime: release, ProcessingTime: proc, Deadline: release + proc + slack}
	}
	return Instance{Name: fmt.Sprintf("random-%d", n), Tasks: tasks}
}
