package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/bnbsched/core/scheduler"
)

// SolverConfig selects the engine and bounds the wall time of a solve.
type SolverConfig struct {
	// Mode is "recursive" or "iterative".
	Mode string `json:"mode"`
	// TimeoutSeconds cancels a solve after this many seconds; 0 disables it.
	TimeoutSeconds int `json:"timeout_seconds"`
	// CheckInterval is the number of nodes between cancellation checks.
	CheckInterval int `json:"check_interval"`
}

// SetDefaults applies sane defaults.
func (c *SolverConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = string(scheduler.ModeRecursive)
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = scheduler.DefaultCheckInterval
	}
}

// Validate checks the mode and timeout.
func (c SolverConfig) Validate() error {
	if _, err := scheduler.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	return nil
}

// Timeout returns the configured timeout, zero when disabled.
func (c SolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Options converts the section into solver options.
func (c SolverConfig) Options() ([]scheduler.Option, error) {
	mode, err := scheduler.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	opts := []scheduler.Option{scheduler.WithMode(mode)}
	if c.CheckInterval > 0 {
		opts = append(opts, scheduler.WithCheckInterval(c.CheckInterval))
	}
	return opts, nil
}
