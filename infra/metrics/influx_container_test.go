//go:build !no_containers

package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/bnbsched/test/util"
)

func TestInfluxSinkContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("container test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	env, cleanup, err := util.StartInflux(ctx)
	if err != nil {
		t.Skipf("influxdb unavailable: %v", err)
	}
	defer cleanup()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: env.URL, Token: env.Token, Org: env.Org, Bucket: env.Bucket})
	influx, ok := sink.(*InfluxSink)
	require.True(t, ok, "health check fell back to nop")
	defer func() { _ = influx.Close() }()

	ev := sampleEvent()
	ev.Time = time.Now()
	require.NoError(t, influx.RecordSolve(ev))

	cli := influxdb2.NewClient(env.URL, env.Token)
	defer cli.Close()
	flux := fmt.Sprintf(`from(bucket:"%s") |> range(start:-5m) |> filter(fn: (r) => r._measurement == "solve_result" and r._field == "makespan")`, env.Bucket)
	res, err := cli.QueryAPI(env.Org).Query(ctx, flux)
	require.NoError(t, err)
	defer func() { _ = res.Close() }()

	var values []any
	for res.Next() {
		values = append(values, res.Record().Value())
		assert.Equal(t, "run-1", res.Record().ValueByKey("run_id"))
	}
	require.NoError(t, res.Err())
	require.Len(t, values, 1)
	assert.EqualValues(t, 7, values[0])
}
