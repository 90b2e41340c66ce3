package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bnbsched/core/model"
	"github.com/kilianp07/bnbsched/core/scheduler"
)

func defaultReport(t *testing.T) Report {
	t.Helper()
	inst := scheduler.DefaultInstance()
	res, err := scheduler.NewSolver().Solve(context.Background(), inst.Tasks)
	require.NoError(t, err)
	return Report{Instance: inst.Name, Tasks: inst.Tasks, Result: res}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, defaultReport(t)))
	want := "schedule [3 1 2 0] with makespan 7\n" +
		"task 3 starts at 0\n" +
		"task 1 starts at 2\n" +
		"task 2 starts at 3\n" +
		"task 0 starts at 5\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteTextInfeasible(t *testing.T) {
	tasks := []model.Task{{ReleaseTime: 0, ProcessingTime: 3, Deadline: 3}, {ReleaseTime: 0, ProcessingTime: 3, Deadline: 3}}
	res, err := scheduler.NewSolver().Solve(context.Background(), tasks)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, Report{Tasks: tasks, Result: res}))
	assert.Equal(t, "no feasible schedule\n", buf.String())
}

func TestWriteTextInterrupted(t *testing.T) {
	r := defaultReport(t)
	r.Result.Interrupted = true
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), "interrupted")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, defaultReport(t)))

	var got Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "default", got.Instance)
	assert.Equal(t, 7, got.Result.Makespan)
	assert.Len(t, got.Result.Timetable, 4)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, defaultReport(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"task", "release_time", "deadline", "start", "end"}, rows[0])
	assert.Equal(t, []string{"3", "0", "4", "0", "2"}, rows[1])
	assert.Equal(t, []string{"0", "4", "7", "5", "7"}, rows[4])
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("xml"), defaultReport(t))
	assert.ErrorIs(t, err, scheduler.ErrUnsupportedFormat)
}
