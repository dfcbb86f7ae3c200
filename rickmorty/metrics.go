package rickmorty

import (
	"context"
	"time"

	"github.com/ceyewan/portalgun/metrics"
)

const (
	MetricRequests        = "rickmorty_requests_total"
	MetricRequestDuration = "rickmorty_request_duration_seconds"
	MetricRetries         = "rickmorty_retries_total"
	MetricBreakerChanges  = "rickmorty_breaker_state_changes_total"
)

type clientMetrics struct {
	requests metrics.Counter
	duration metrics.Histogram
	retries  metrics.Counter
	breaker  metrics.Counter
}

func newClientMetrics(m metrics.Meter) (*clientMetrics, error) {
	cm := &clientMetrics{}
	var err error
	if cm.requests, err = m.Counter(MetricRequests, "Upstream requests by operation and outcome."); err != nil {
		return nil, err
	}
	if cm.duration, err = m.Histogram(MetricRequestDuration, "Upstream request latency including retries.", metrics.WithUnit("s")); err != nil {
		return nil, err
	}
	if cm.retries, err = m.Counter(MetricRetries, "Upstream request retries."); err != nil {
		return nil, err
	}
	if cm.breaker, err = m.Counter(MetricBreakerChanges, "Circuit breaker transitions by target state."); err != nil {
		return nil, err
	}
	return cm, nil
}

func (m *clientMetrics) observe(ctx context.Context, op string, d time.Duration, err error) {
	opLabel := metrics.L(metrics.LabelOperation, op)
	m.requests.Inc(ctx, opLabel, metrics.L(metrics.LabelOutcome, metrics.Outcome(err)))
	m.duration.Record(ctx, d.Seconds(), opLabel)
}

func (m *clientMetrics) retry(ctx context.Context, op string) {
	m.retries.Inc(ctx, metrics.L(metrics.LabelOperation, op))
}

func (m *clientMetrics) stateChange(to string) {
	m.breaker.Inc(context.Background(), metrics.L("state", to))
}
