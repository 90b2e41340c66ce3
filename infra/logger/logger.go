package logger

import (
	"os"
	"strings"
	"sync"

	corelogger "github.com/kilianp07/bnbsched/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.NopLogger

// Options controls the output of loggers created by New.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string `json:"level"`
	// Format is "json" or "console". Empty follows APP_ENV: console when it
	// is "dev", json otherwise.
	Format string `json:"format"`
}

var (
	mu       sync.RWMutex
	defaults Options
)

// Configure sets the options used by every subsequent call to New.
func Configure(o Options) {
	mu.Lock()
	defaults = o
	mu.Unlock()
}

// New returns a Logger for the given component.
func New(component string) Logger {
	mu.RLock()
	o := defaults
	mu.RUnlock()
	if o.Format == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		o.Format = "console"
	}
	return NewZerologLogger(component, o, os.Stderr)
}
