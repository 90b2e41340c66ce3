package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/bnbsched/core/metrics"
)

// PromConfig configures a PromSink.
type PromConfig struct {
	// PushgatewayURL enables pushing on Flush.
	PushgatewayURL string `json:"pushgateway_url"`
	Job            string `json:"job"`
	// PushTimeout bounds a single push.
	PushTimeout time.Duration `json:"push_timeout"`
}

// PromSink records solve events in Prometheus metrics.
type PromSink struct {
	cfg      PromConfig
	gatherer prometheus.Gatherer

	solves   *prometheus.CounterVec
	nodes    *prometheus.CounterVec
	prunes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	makespan *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on a private registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.NewRegistry())
}

// NewPromSinkWithRegistry registers metrics on reg, which is also what Flush
// pushes. A nil reg defaults to the global registry.
func NewPromSinkWithRegistry(cfg PromConfig, reg *prometheus.Registry) (*PromSink, error) {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	if cfg.Job == "" {
		cfg.Job = "bnbsched"
	}
	if cfg.PushTimeout <= 0 {
		cfg.PushTimeout = 5 * time.Second
	}

	solves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bnbsched_solves_total",
		Help: "Total number of solve runs",
	}, []string{"mode", "feasible"})
	nodes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bnbsched_search_nodes_total",
		Help: "Search nodes expanded",
	}, []string{"mode"})
	prunes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bnbsched_prunes_total",
		Help: "Branches cut, by reason",
	}, []string{"mode", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bnbsched_solve_duration_seconds",
		Help:    "Wall time of a solve run",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"mode"})
	makespan := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bnbsched_makespan",
		Help: "Makespan of the last feasible schedule per instance",
	}, []string{"instance"})

	var err error
	if solves, err = register(registerer, solves); err != nil {
		return nil, err
	}
	if nodes, err = register(registerer, nodes); err != nil {
		return nil, err
	}
	if prunes, err = register(registerer, prunes); err != nil {
		return nil, err
	}
	if duration, err = register(registerer, duration); err != nil {
		return nil, err
	}
	if makespan, err = register(registerer, makespan); err != nil {
		return nil, err
	}
	return &PromSink{
		cfg:      cfg,
		gatherer: gatherer,
		solves:   solves,
		nodes:    nodes,
		prunes:   prunes,
		duration: duration,
		makespan: makespan,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve updates counters from the run statistics.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	mode := string(ev.Mode)
	st := ev.Result.Stats
	s.solves.WithLabelValues(mode, strconv.FormatBool(ev.Result.Feasible)).Inc()
	s.nodes.WithLabelValues(mode).Add(float64(st.Nodes))
	s.prunes.WithLabelValues(mode, "deadline").Add(float64(st.DeadlinePrunes))
	s.prunes.WithLabelValues(mode, "bound").Add(float64(st.BoundPrunes))
	s.duration.WithLabelValues(mode).Observe(ev.Result.Duration.Seconds())
	if ev.Result.Feasible {
		s.makespan.WithLabelValues(ev.Instance).Set(float64(ev.Result.Makespan))
	}
	return nil
}

// Flush pushes the registry to the configured Pushgateway, if any.
func (s *PromSink) Flush(ctx context.Context) error {
	if s.cfg.PushgatewayURL == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PushTimeout)
	defer cancel()
	if err := push.New(s.cfg.PushgatewayURL, s.cfg.Job).Gatherer(s.gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("pushgateway: %w", err)
	}
	return nil
}

// Gatherer returns the registry the sink's metrics live in.
func (s *PromSink) Gatherer() prometheus.Gatherer { return s.gatherer }
