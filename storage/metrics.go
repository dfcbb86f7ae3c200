package storage

import (
	"context"
	"time"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/xerrors"
)

const (
	MetricOps        = "storage_ops_total"
	MetricOpDuration = "storage_op_duration_seconds"
)

// instrumented 为任意驱动记录操作次数、耗时与失败日志
type instrumented struct {
	Storage
	driver   metrics.Label
	ops      metrics.Counter
	duration metrics.Histogram
	logger   clog.Logger
}

func instrument(st Storage, driver string, m metrics.Meter, logger clog.Logger) (Storage, error) {
	ops, err := m.Counter(MetricOps, "Storage operations by driver, op and outcome.")
	if err != nil {
		return nil, xerrors.Wrap(err, "storage: create metrics")
	}
	duration, err := m.Histogram(MetricOpDuration, "Storage operation latency.", metrics.WithUnit("s"))
	if err != nil {
		return nil, xerrors.Wrap(err, "storage: create metrics")
	}
	return &instrumented{
		Storage:  st,
		driver:   metrics.L(metrics.LabelDriver, driver),
		ops:      ops,
		duration: duration,
		logger:   logger.With(clog.String("driver", driver)),
	}, nil
}

func (s *instrumented) observe(ctx context.Context, op, key string, start time.Time, err error) {
	opLabel := metrics.L(metrics.LabelOperation, op)
	s.ops.Inc(ctx, s.driver, opLabel, metrics.L(metrics.LabelOutcome, metrics.Outcome(err)))
	s.duration.Record(ctx, time.Since(start).Seconds(), s.driver, opLabel)
	if err != nil {
		s.logger.WarnContext(ctx, "storage operation failed",
			clog.String("op", op), clog.String("key", key), clog.Error(err))
	}
}

func (s *instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	v, ok, err := s.Storage.Get(ctx, key)
	s.observe(ctx, "get", key, start, err)
	return v, ok, err
}

func (s *instrumented) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.Storage.Set(ctx, key, value)
	s.observe(ctx, "set", key, start, err)
	return err
}

func (s *instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.Storage.Remove(ctx, key)
	s.observe(ctx, "remove", key, start, err)
	return err
}
