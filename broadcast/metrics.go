package broadcast

import (
	"context"

	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/xerrors"
)

const (
	MetricPublished = "broadcast_published_total"
	MetricReceived  = "broadcast_received_total"
)

// 接收结果
const (
	outcomeDelivered = "delivered"
	outcomeSelf      = "self"
	outcomeInvalid   = "invalid"
)

type channelMetrics struct {
	driver metrics.Label
	pub    metrics.Counter
	recv   metrics.Counter
}

func newChannelMetrics(m metrics.Meter, driver string) (*channelMetrics, error) {
	pub, err := m.Counter(MetricPublished, "Notifications published by key and outcome.")
	if err != nil {
		return nil, xerrors.Wrap(err, "broadcast: create metrics")
	}
	recv, err := m.Counter(MetricReceived, "Notifications received by key and outcome.")
	if err != nil {
		return nil, xerrors.Wrap(err, "broadcast: create metrics")
	}
	return &channelMetrics{driver: metrics.L(metrics.LabelDriver, driver), pub: pub, recv: recv}, nil
}

func (m *channelMetrics) published(ctx context.Context, key string, err error) {
	m.pub.Inc(ctx, m.driver, metrics.L(metrics.LabelKey, key), metrics.L(metrics.LabelOutcome, metrics.Outcome(err)))
}

func (m *channelMetrics) received(ctx context.Context, key, outcome string) {
	m.recv.Inc(ctx, m.driver, metrics.L(metrics.LabelKey, key), metrics.L(metrics.LabelOutcome, outcome))
}
