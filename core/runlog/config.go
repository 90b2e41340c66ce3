package runlog

import (
	"errors"
	"fmt"
)

// ErrUnknownBackend is returned for a backend name other than jsonl or sqlite.
var ErrUnknownBackend = errors.New("unknown history backend")

// Config defines settings for run history storage and rotation.
type Config struct {
	Enabled bool `json:"enabled"`
	// Backend selects the store type: "jsonl" or "sqlite".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers JSONL rotation when the file exceeds this size.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated JSONL files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated JSONL files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		if c.Backend == "sqlite" {
			c.Path = "bnbsched.db"
		} else {
			c.Path = "bnbsched-runs.jsonl"
		}
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Backend != "jsonl" && c.Backend != "sqlite" {
		return fmt.Errorf("%w %q", ErrUnknownBackend, c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("history path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("history rotation limits must not be negative")
	}
	return nil
}

// NewStore opens the store described by cfg.
func NewStore(cfg Config) (RunStore, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
}
