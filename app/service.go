package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/bnbsched/config"
	coremetrics "github.com/kilianp07/bnbsched/core/metrics"
	"github.com/kilianp07/bnbsched/core/runlog"
	"github.com/kilianp07/bnbsched/core/scheduler"
	"github.com/kilianp07/bnbsched/infra/logger"
	"github.com/kilianp07/bnbsched/infra/metrics"
	"github.com/kilianp07/bnbsched/infra/mqtt"
	"github.com/kilianp07/bnbsched/internal/eventbus"
)

// ErrHistoryDisabled is returned by History when no run store is configured.
var ErrHistoryDisabled = errors.New("run history is disabled")

// recordTimeout bounds the side channel writes of one run. They run detached
// from the caller's context so a canceled solve is still persisted.
const recordTimeout = 10 * time.Second

// Publisher sends finished runs to downstream consumers.
type Publisher interface {
	PublishRun(ctx context.Context, rec runlog.RunRecord) error
	Close() error
}

// Service solves instances and fans the results out to metrics, history and
// the broker.
type Service struct {
	solver  *scheduler.Solver
	timeout time.Duration
	sink    coremetrics.MetricsSink
	store   runlog.RunStore
	pub     Publisher
	runs    *eventbus.Bus[runlog.RunRecord]
	log     logger.Logger
}

// Option customizes a Service built by New.
type Option func(*Service)

// WithStore replaces the configured history store.
func WithStore(s runlog.RunStore) Option { return func(svc *Service) { svc.store = s } }

// WithPublisher replaces the configured MQTT publisher.
func WithPublisher(p Publisher) Option { return func(svc *Service) { svc.pub = p } }

// WithSink replaces the configured metrics sinks.
func WithSink(s coremetrics.MetricsSink) Option { return func(svc *Service) { svc.sink = s } }

// New creates a Service from the configuration. Components that options
// provide are not built from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	logger.Configure(cfg.Logging)
	svc := &Service{
		timeout: cfg.Solver.Timeout(),
		runs:    eventbus.New[runlog.RunRecord](),
		log:     logger.New("service"),
	}
	for _, o := range opts {
		o(svc)
	}

	solverOpts, err := cfg.Solver.Options()
	if err != nil {
		return nil, err
	}
	solverOpts = append(solverOpts, scheduler.WithLogger(logger.New("solver")))
	svc.solver = scheduler.NewSolver(solverOpts...)

	if svc.sink == nil {
		if svc.sink, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
	}
	if svc.store == nil && cfg.History.Enabled {
		if svc.store, err = runlog.NewStore(cfg.History); err != nil {
			svc.closeSink()
			return nil, fmt.Errorf("history store: %w", err)
		}
	}
	if svc.pub == nil && cfg.MQTT.Enabled {
		p, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			svc.closeSink()
			if svc.store != nil {
				_ = svc.store.Close()
			}
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.pub = p
	}
	return svc, nil
}

// Mode reports the engine the service solves with.
func (s *Service) Mode() scheduler.Mode { return s.solver.Mode() }

// Runs subscribes to finished runs.
func (s *Service) Runs() <-chan runlog.RunRecord { return s.runs.Subscribe(0) }

// Solve runs the solver on inst and records the outcome. Invalid input is
// returned as an error before anything is recorded. An interrupted search is
// still recorded, and its record is returned together with the error.
func (s *Service) Solve(ctx context.Context, inst scheduler.Instance) (runlog.RunRecord, error) {
	solveCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, solveErr := s.solver.Solve(solveCtx, inst.Tasks)
	if solveErr != nil && !res.Interrupted {
		return runlog.RunRecord{}, solveErr
	}

	rec := runlog.NewRecord(inst.Name, s.solver.Mode(), inst.Tasks, res)
	s.record(ctx, rec)
	s.runs.Publish(rec)
	return rec, solveErr
}

// record pushes rec to every configured side channel. Failures are only
// logged.
func (s *Service) record(ctx context.Context, rec runlog.RunRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	ev := coremetrics.SolveEvent{
		RunID:    rec.ID,
		Instance: rec.Instance,
		Mode:     rec.Mode,
		Tasks:    len(rec.Tasks),
		Result:   rec.Result,
		Time:     rec.Timestamp,
	}
	if err := s.sink.RecordSolve(ev); err != nil {
		s.log.Warnf("record metrics for run %s: %v", rec.ID, err)
	}
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			s.log.Warnf("flush metrics: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Append(ctx, rec); err != nil {
			s.log.Warnf("append run %s to history: %v", rec.ID, err)
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishRun(ctx, rec); err != nil {
			s.log.Warnf("publish run %s: %v", rec.ID, err)
		}
	}
}

// History queries the run store.
func (s *Service) History(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error) {
	if s.store == nil {
		return nil, ErrHistoryDisabled
	}
	return s.store.Query(ctx, q)
}

// ServeMetrics exposes every Prometheus sink on addr until ctx is canceled.
func (s *Service) ServeMetrics(ctx context.Context, addr string) error {
	gs := gatherers(s.sink)
	if len(gs) == 0 {
		return fmt.Errorf("no prometheus sink configured")
	}
	return metrics.StartPromServer(ctx, addr, gs)
}

func gatherers(sink coremetrics.MetricsSink) prometheus.Gatherers {
	switch v := sink.(type) {
	case interface{ Gatherer() prometheus.Gatherer }:
		return prometheus.Gatherers{v.Gatherer()}
	case *coremetrics.MultiSink:
		var gs prometheus.Gatherers
		for _, inner := range v.Sinks {
			gs = append(gs, gatherers(inner)...)
		}
		return gs
	}
	return nil
}

func (s *Service) closeSink() {
	if c, ok := s.sink.(coremetrics.Closer); ok {
		_ = c.Close()
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.runs.Close()
	var errs []error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.pub != nil {
		errs = append(errs, s.pub.Close())
	}
	return errors.Join(errs...)
}
