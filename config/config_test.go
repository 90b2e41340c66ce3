package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bnbsched/core/scheduler"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `solver:
  mode: iterative
  timeout_seconds: 30
logging:
  level: debug
  format: console
history:
  enabled: true
  backend: sqlite
  path: runs.db
metrics:
  sinks:
    - type: "nop"
    - type: "prometheus"
      conf:
        job: "bnb"
mqtt:
  enabled: true
  broker: "tcp://localhost:1883"
  client_id: "cli"
  username: "user"
  password: "pass"
  topic: "sched/runs"
  qos: 1
  retain: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"solver.mode", cfg.Solver.Mode, "iterative"},
		{"solver.timeout", cfg.Solver.TimeoutSeconds, 30},
		{"solver.check_interval", cfg.Solver.CheckInterval, scheduler.DefaultCheckInterval},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format", cfg.Logging.Format, "console"},
		{"history.enabled", cfg.History.Enabled, true},
		{"history.backend", cfg.History.Backend, "sqlite"},
		{"history.path", cfg.History.Path, "runs.db"},
		{"metrics.sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics.sink0", cfg.Metrics.Sinks[0].Type, "nop"},
		{"metrics.sink1.job", cfg.Metrics.Sinks[1].Conf["job"], "bnb"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "cli"},
		{"mqtt.username", cfg.MQTT.Username, "user"},
		{"mqtt.password", cfg.MQTT.Password, "pass"},
		{"mqtt.topic", cfg.MQTT.Topic, "sched/runs"},
		{"mqtt.qos", cfg.MQTT.QoS, byte(1)},
		{"mqtt.retain", cfg.MQTT.Retain, true},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"solver":{"mode":"recursive"},"history":{"enabled":false}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "recursive", cfg.Solver.Mode)
	assert.False(t, cfg.History.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "recursive", cfg.Solver.Mode)
	assert.Zero(t, cfg.Solver.Timeout())
	assert.Equal(t, "jsonl", cfg.History.Backend)
	assert.Equal(t, "bnbsched-runs.jsonl", cfg.History.Path)
	assert.Equal(t, "bnbsched/runs", cfg.MQTT.Topic)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.Metrics.Sinks)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BNB_SOLVER__MODE", "iterative")
	t.Setenv("BNB_SOLVER__TIMEOUT_SECONDS", "5")
	t.Setenv("BNB_HISTORY__BACKEND", "sqlite")
	path := writeFile(t, "config.yaml", "solver:\n  mode: recursive\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "iterative", cfg.Solver.Mode)
	assert.Equal(t, 5, cfg.Solver.TimeoutSeconds)
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, "bnbsched.db", cfg.History.Path)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		name string
		data string
	}{
		"format":       {"config.toml", "x = 1"},
		"mode":         {"c.yaml", "solver:\n  mode: parallel\n"},
		"timeout":      {"c.yaml", "solver:\n  timeout_seconds: -1\n"},
		"log format":   {"c.yaml", "logging:\n  format: xml\n"},
		"log level":    {"c.yaml", "logging:\n  level: loud\n"},
		"history":      {"c.yaml", "history:\n  enabled: true\n  backend: csv\n"},
		"mqtt broker":  {"c.yaml", "mqtt:\n  enabled: true\n"},
		"untyped sink": {"c.yaml", "metrics:\n  sinks:\n    - conf: {}\n"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, c.name, c.data))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSolverOptions(t *testing.T) {
	opts, err := SolverConfig{Mode: "iterative", CheckInterval: 16}.Options()
	require.NoError(t, err)
	s := scheduler.NewSolver(opts...)
	assert.Equal(t, scheduler.ModeIterative, s.Mode())

	_, err = SolverConfig{Mode: "bogus"}.Options()
	assert.Error(t, err)
}
