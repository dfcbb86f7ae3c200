package reqqueue

import (
	"context"
	"time"

	"github.com/ceyewan/portalgun/metrics"
)

const (
	MetricRunning      = "reqqueue_running"
	MetricQueued       = "reqqueue_queued"
	MetricDedupeHits   = "reqqueue_dedupe_hits_total"
	MetricTasks        = "reqqueue_tasks_total"
	MetricTaskDuration = "reqqueue_task_duration_seconds"
	MetricWaitDuration = "reqqueue_wait_duration_seconds"
)

type queueMetrics struct {
	label    metrics.Label
	running  metrics.Gauge
	queued   metrics.Gauge
	dedupe   metrics.Counter
	tasks    metrics.Counter
	duration metrics.Histogram
	wait     metrics.Histogram
}

func newQueueMetrics(m metrics.Meter, name string) (*queueMetrics, error) {
	qm := &queueMetrics{label: metrics.L("queue", name)}
	var err error
	if qm.running, err = m.Gauge(MetricRunning, "Tasks currently running."); err != nil {
		return nil, err
	}
	if qm.queued, err = m.Gauge(MetricQueued, "Tasks waiting for a slot."); err != nil {
		return nil, err
	}
	if qm.dedupe, err = m.Counter(MetricDedupeHits, "Add calls served by an in-flight task."); err != nil {
		return nil, err
	}
	if qm.tasks, err = m.Counter(MetricTasks, "Settled tasks by outcome."); err != nil {
		return nil, err
	}
	if qm.duration, err = m.Histogram(MetricTaskDuration, "Task execution time.", metrics.WithUnit("s")); err != nil {
		return nil, err
	}
	if qm.wait, err = m.Histogram(MetricWaitDuration, "Time from submission to start.", metrics.WithUnit("s")); err != nil {
		return nil, err
	}
	return qm, nil
}

func (m *queueMetrics) setRunning(n int) {
	m.running.Set(context.Background(), float64(n), m.label)
}

func (m *queueMetrics) setQueued(n int) {
	m.queued.Set(context.Background(), float64(n), m.label)
}

func (m *queueMetrics) dedupeHit() {
	m.dedupe.Inc(context.Background(), m.label)
}

func (m *queueMetrics) observe(elapsed, wait time.Duration, err error) {
	ctx := context.Background()
	m.tasks.Inc(ctx, m.label, metrics.L(metrics.LabelOutcome, metrics.Outcome(err)))
	m.duration.Record(ctx, elapsed.Seconds(), m.label)
	m.wait.Record(ctx, wait.Seconds(), m.label)
}
