// Package export renders solve results as text, JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kilianp07/bnbsched/core/model"
	"github.com/kilianp07/bnbsched/core/scheduler"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Report is one solved instance.
type Report struct {
	Instance string           `json:"instance"`
	Tasks    []model.Task     `json:"tasks"`
	Result   scheduler.Result `json:"result"`
}

// Write encodes r in the given format.
func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatText, "":
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	default:
		return fmt.Errorf("%w: %q", scheduler.ErrUnsupportedFormat, f)
	}
}

// WriteText prints the schedule, its makespan and the start time of each task.
func WriteText(w io.Writer, r Report) error {
	res := r.Result
	var b strings.Builder
	if !res.Feasible {
		b.WriteString("no feasible schedule\n")
	} else {
		fmt.Fprintf(&b, "schedule %v with makespan %d\n", res.Schedule, res.Makespan)
		for _, s := range res.Timetable {
			fmt.Fprintf(&b, "task %d starts at %d\n", s.Task, s.Start)
		}
	}
	if res.Interrupted {
		b.WriteString("search interrupted, result may not be optimal\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes the report to w in JSON format.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per scheduled task. An infeasible result yields
// only the header.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"task", "release_time", "deadline", "start", "end"}); err != nil {
		return err
	}
	for _, s := range r.Result.Timetable {
		t := r.Tasks[s.Task]
		rec := []string{
			strconv.Itoa(s.Task),
			strconv.Itoa(t.ReleaseTime),
			strconv.Itoa(t.Deadline),
			strconv.Itoa(s.Start),
			strconv.Itoa(s.End),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
