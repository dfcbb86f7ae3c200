// Package reqqueue 提供有界并发、按 key 去重的请求队列。
//
// 典型用途是批量拉取头像：同时在途的请求不超过 MaxConcurrent，
// 相同 URL 在请求未结束前只会发起一次网络请求。
//
//	q, _ := reqqueue.New[*avatar.Blob](reqqueue.DefaultConfig(), reqqueue.WithLogger(logger))
//	blob, err := q.Do(ctx, fetch(url), url)
//
// 语义：
//   - 相同 key 的任务在途时，Add 返回同一个 *Future，新任务不会被调用
//   - 任务按提交顺序（FIFO）获得运行槽位
//   - 任务结束（成功、失败或 panic）后立即移除 key；之后同 key 的 Add 会启动新任务，不缓存结果
//   - 失败只影响共享该 key 的调用方
package reqqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/xerrors"
)

// Task 队列中执行的工作单元。ctx 仅在配置了 TaskTimeout 时带有截止时间。
type Task[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	task     Task[T]
	future   *Future[T]
	enqueued time.Time
}

// Stats 队列快照
type Stats struct {
	Running int // 正在运行的任务数
	Queued  int // 等待槽位的任务数
	Pending int // 在途的去重 key 数
}

// Queue 有界并发请求队列，并发安全
type Queue[T any] struct {
	maxConcurrent int
	taskTimeout   time.Duration
	name          string
	logger        clog.Logger
	metrics       *queueMetrics

	mu      sync.Mutex
	fifo    []*entry[T]
	running int
	pending map[string]*Future[T]
	closed  bool
	wg      sync.WaitGroup
}

// New 创建队列。cfg 为 nil 时使用 DefaultConfig。
func New[T any](cfg *Config, opts ...Option) (*Queue[T], error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts...)

	m, err := newQueueMetrics(o.meter, o.name)
	if err != nil {
		return nil, xerrors.Wrap(err, "reqqueue: create metrics")
	}

	return &Queue[T]{
		maxConcurrent: cfg.MaxConcurrent,
		taskTimeout:   cfg.TaskTimeout,
		name:          o.name,
		logger:        o.logger.With(clog.String("queue", o.name)),
		metrics:       m,
		pending:       make(map[string]*Future[T]),
	}, nil
}

// Add 提交任务。dedupeKey 为空表示不去重。
// 队列已关闭或 task 为 nil 时返回一个已失败的 Future。
func (q *Queue[T]) Add(task Task[T], dedupeKey string) *Future[T] {
	if task == nil {
		return failedFuture[T](dedupeKey, ErrNilTask)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return failedFuture[T](dedupeKey, ErrClosed)
	}

	if dedupeKey != "" {
		if f, ok := q.pending[dedupeKey]; ok {
			q.metrics.dedupeHit()
			q.logger.Debug("request deduplicated", clog.String("key", dedupeKey))
			return f
		}
	}

	f := newFuture[T](dedupeKey)
	if dedupeKey != "" {
		q.pending[dedupeKey] = f
	}
	q.fifo = append(q.fifo, &entry[T]{task: task, future: f, enqueued: time.Now()})
	q.dispatchLocked()
	return f
}

// Do 提交任务并等待结果。ctx 只控制等待，不取消任务。
func (q *Queue[T]) Do(ctx context.Context, task Task[T], dedupeKey string) (T, error) {
	return q.Add(task, dedupeKey).Wait(ctx)
}

// Stats 返回当前快照
func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{Running: q.running, Queued: len(q.fifo), Pending: len(q.pending)}
}

// Close 关闭队列：尚未开始的任务以 ErrClosed 失败，之后的 Add 直接失败，
// 然后等待运行中的任务结束或 ctx 到期。可重复调用。
func (q *Queue[T]) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	dropped := q.fifo
	q.fifo = nil
	for _, e := range dropped {
		if e.future.key != "" {
			delete(q.pending, e.future.key)
		}
	}
	q.metrics.setQueued(0)
	q.mu.Unlock()

	for _, e := range dropped {
		e.future.settle(*new(T), ErrClosed)
	}
	if len(dropped) > 0 {
		q.logger.Info("queue closed, dropped queued tasks", clog.Int("dropped", len(dropped)))
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return xerrors.Wrap(ctx.Err(), "reqqueue: wait running tasks")
	}
}

// dispatchLocked 在持锁状态下按 FIFO 填满空闲槽位
func (q *Queue[T]) dispatchLocked() {
	for q.running < q.maxConcurrent && len(q.fifo) > 0 {
		e := q.fifo[0]
		q.fifo[0] = nil
		q.fifo = q.fifo[1:]
		q.running++
		q.wg.Add(1)
		go q.run(e)
	}
	q.metrics.setRunning(q.running)
	q.metrics.setQueued(len(q.fifo))
}

func (q *Queue[T]) run(e *entry[T]) {
	defer q.wg.Done()

	start := time.Now()
	val, err := q.invoke(e.task)
	elapsed := time.Since(start)

	q.mu.Lock()
	q.running--
	// 无论成功失败都必须移除 key，否则该 key 永远无法重试
	if key := e.future.key; key != "" && q.pending[key] == e.future {
		delete(q.pending, key)
	}
	q.dispatchLocked()
	q.mu.Unlock()

	e.future.settle(val, err)

	q.metrics.observe(elapsed, start.Sub(e.enqueued), err)
	if err != nil {
		q.logger.Debug("task failed",
			clog.String("key", e.future.key),
			clog.Duration("elapsed", elapsed),
			clog.Error(err))
	}
}

func (q *Queue[T]) invoke(task Task[T]) (val T, err error) {
	ctx := context.Background()
	if q.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.taskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", clog.Any("panic", r))
			var zero T
			val, err = zero, fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return task(ctx)
}
