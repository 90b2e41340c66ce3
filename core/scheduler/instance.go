package scheduler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/bnbsched/core/model"
)

// ErrUnsupportedFormat is returned for instance files that are neither JSON
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported instance format")

// Instance is a named task list, as read from an instance file.
type Instance struct {
	Name  string       `json:"name" yaml:"name"`
	Tasks []model.Task `json:"tasks" yaml:"tasks"`
}

// DefaultInstance is the four task demonstration set.
func DefaultInstance() Instance {
	return Instance{
		Name: "default",
		Tasks: []model.Task{
			{ReleaseTime: 4, ProcessingTime: 2, Deadline: 7},
			{ReleaseTime: 1, ProcessingTime: 1, Deadline: 5},
			{ReleaseTime: 1, ProcessingTime: 2, Deadline: 6},
			{ReleaseTime: 0, ProcessingTime: 2, Deadline: 4},
		},
	}
}

// LoadInstance reads an Instance from a JSON or YAML file.
func LoadInstance(path string) (Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return Instance{}, err
	}
	defer func() { _ = f.Close() }()
	inst, err := DecodeInstance(f, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return Instance{}, fmt.Errorf("%s: %w", path, err)
	}
	if inst.Name == "" {
		inst.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return inst, nil
}

// DecodeInstance reads from r to decode an Instance and validates its tasks.
func DecodeInstance(r io.Reader, format string) (Instance, error) {
	var inst Instance
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&inst); err != nil {
			return inst, err
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&inst); err != nil {
			return inst, err
		}
	default:
		return inst, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := model.ValidateTasks(inst.Tasks); err != nil {
		return inst, err
	}
	return inst, nil
}
