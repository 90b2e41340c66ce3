package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/bnbsched/core/metrics"
	"github.com/kilianp07/bnbsched/infra/logger"
)

// InfluxConfig locates the bucket solve results are written to.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes solve events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// solvePoint encodes one solve event as a solve_result point.
func solvePoint(ev coremetrics.SolveEvent) *write.Point {
	r := ev.Result
	return write.NewPointWithMeasurement("solve_result").
		AddTag("run_id", ev.RunID).
		AddTag("instance", ev.Instance).
		AddTag("mode", string(ev.Mode)).
		AddTag("feasible", strconv.FormatBool(r.Feasible)).
		AddField("tasks", ev.Tasks).
		AddField("makespan", r.Makespan).
		AddField("nodes", r.Stats.Nodes).
		AddField("deadline_prunes", r.Stats.DeadlinePrunes).
		AddField("bound_prunes", r.Stats.BoundPrunes).
		AddField("improvements", r.Stats.Improvements).
		AddField("early_exit", r.EarlyExit).
		AddField("interrupted", r.Interrupted).
		AddField("duration_ms", float64(r.Duration.Microseconds())/1000).
		SetTime(ev.Time)
}

// RecordSolve writes the event as line protocol.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, solvePoint(ev))
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
