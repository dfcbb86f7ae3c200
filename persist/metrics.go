package persist

import (
	"context"

	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/xerrors"
)

const (
	MetricWrites        = "persist_writes_total"
	MetricWriteFailures = "persist_write_failures_total"
	MetricRemoteUpdates = "persist_remote_updates_total"
)

const (
	outcomeApplied   = "applied"
	outcomeIgnored   = "ignored"
	outcomeRefreshed = "refreshed"
)

type storeMetrics struct {
	key      metrics.Label
	writes   metrics.Counter
	failures metrics.Counter
	remotes  metrics.Counter
}

func newStoreMetrics(m metrics.Meter, key string) (*storeMetrics, error) {
	sm := &storeMetrics{key: metrics.L(metrics.LabelKey, key)}
	var err error
	if sm.writes, err = m.Counter(MetricWrites, "Successful persisted writes."); err != nil {
		return nil, xerrors.Wrap(err, "persist: create metrics")
	}
	if sm.failures, err = m.Counter(MetricWriteFailures, "Writes that failed to reach storage."); err != nil {
		return nil, xerrors.Wrap(err, "persist: create metrics")
	}
	if sm.remotes, err = m.Counter(MetricRemoteUpdates, "Notifications from other contexts by outcome."); err != nil {
		return nil, xerrors.Wrap(err, "persist: create metrics")
	}
	return sm, nil
}

func (m *storeMetrics) written(ctx context.Context) { m.writes.Inc(ctx, m.key) }

func (m *storeMetrics) writeFailed(ctx context.Context) { m.failures.Inc(ctx, m.key) }

func (m *storeMetrics) remote(ctx context.Context, outcome string) {
	m.remotes.Inc(ctx, m.key, metrics.L(metrics.LabelOutcome, outcome))
}
