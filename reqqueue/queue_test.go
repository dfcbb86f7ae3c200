package reqqueue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/xerrors"
)

const waitTimeout = 2 * time.Second

func newQueue[T any](t *testing.T, max int, opts ...Option) *Queue[T] {
	t.Helper()
	q, err := New[T](&Config{MaxConcurrent: max}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
		defer cancel()
		_ = q.Close(ctx)
	})
	return q
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	t.Cleanup(cancel)
	return ctx
}

func TestNew_Config(t *testing.T) {
	t.Run("nil 配置使用默认并发 3", func(t *testing.T) {
		q, err := New[int](nil)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxConcurrent, q.maxConcurrent)
	})

	t.Run("并发数为 0 非法", func(t *testing.T) {
		_, err := New[int](&Config{MaxConcurrent: 0})
		assert.ErrorIs(t, err, ErrInvalidConcurrency)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("负超时非法", func(t *testing.T) {
		_, err := New[int](&Config{MaxConcurrent: 1, TaskTimeout: -time.Second})
		assert.Error(t, err)
	})

	t.Run("带指标", func(t *testing.T) {
		m, err := metrics.New(metrics.NewDevDefaultConfig("reqqueue-test"))
		require.NoError(t, err)
		q, err := New[int](DefaultConfig(), WithMeter(m), WithName("avatar"))
		require.NoError(t, err)
		v, err := q.Do(waitCtx(t), func(context.Context) (int, error) { return 1, nil }, "k")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})
}

// 任意时刻运行中的任务数不超过 N
func TestQueue_ConcurrencyBound(t *testing.T) {
	const n, m = 3, 20
	q := newQueue[int](t, n)

	var running, peak atomic.Int32
	gate := make(chan struct{})

	futures := make([]*Future[int], 0, m)
	for i := 0; i < m; i++ {
		i := i
		futures = append(futures, q.Add(func(context.Context) (int, error) {
			cur := running.Add(1)
			for {
				p := peak.Load()
				if cur <= p || peak.CompareAndSwap(p, cur) {
					break
				}
			}
			<-gate
			time.Sleep(time.Millisecond)
			running.Add(-1)
			return i, nil
		}, ""))
	}

	require.Eventually(t, func() bool { return running.Load() == n }, waitTimeout, time.Millisecond)
	assert.Equal(t, Stats{Running: n, Queued: m - n, Pending: 0}, q.Stats())

	close(gate)
	for i, f := range futures {
		v, err := f.Wait(waitCtx(t))
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.LessOrEqual(t, peak.Load(), int32(n))
}

// maxConcurrent=3，提交 5 个不同 URL：3 个立即开始，其余 2 个等待槽位释放
func TestQueue_ThreeOfFive(t *testing.T) {
	q := newQueue[string](t, 3)

	started := make(chan int, 5)
	release := make([]chan struct{}, 5)
	futures := make([]*Future[string], 5)
	for i := range release {
		i := i
		release[i] = make(chan struct{})
		futures[i] = q.Add(func(context.Context) (string, error) {
			started <- i
			<-release[i]
			return fmt.Sprintf("blob-%d", i), nil
		}, fmt.Sprintf("https://example.com/%d.jpeg", i))
	}

	first := map[int]bool{}
	for len(first) < 3 {
		select {
		case i := <-started:
			first[i] = true
		case <-time.After(waitTimeout):
			t.Fatal("前三个任务未启动")
		}
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, first)

	select {
	case i := <-started:
		t.Fatalf("任务 %d 不应在槽位释放前启动", i)
	case <-time.After(50 * time.Millisecond):
	}

	close(release[1])
	select {
	case i := <-started:
		assert.Equal(t, 3, i, "FIFO：第 4 个提交的任务先获得槽位")
	case <-time.After(waitTimeout):
		t.Fatal("释放槽位后第 4 个任务未启动")
	}

	for _, i := range []int{0, 2, 3, 4} {
		close(release[i])
	}
	for i, f := range futures {
		v, err := f.Wait(waitCtx(t))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("blob-%d", i), v)
	}
}

// 在途的相同 key 返回同一个 Future，任务只执行一次
func TestQueue_Dedupe(t *testing.T) {
	q := newQueue[[]byte](t, 3)

	var calls atomic.Int32
	gate := make(chan struct{})
	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-gate
		return []byte("avatar"), nil
	}

	f1 := q.Add(fetch, "url1")
	f2 := q.Add(func(context.Context) ([]byte, error) {
		t.Error("重复 key 的任务不应被调用")
		return nil, nil
	}, "url1")

	assert.Same(t, f1, f2)
	assert.Equal(t, "url1", f1.Key())
	assert.Equal(t, 1, q.Stats().Pending)

	close(gate)
	v1, err := f1.Wait(waitCtx(t))
	require.NoError(t, err)
	v2, err := f2.Wait(waitCtx(t))
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int32(1), calls.Load())
}

// 任务结束后同 key 重新提交会启动新任务，成功与失败都一样
func TestQueue_FreshTaskAfterSettle(t *testing.T) {
	for _, fail := range []bool{false, true} {
		name := "成功后"
		if fail {
			name = "失败后"
		}
		t.Run(name, func(t *testing.T) {
			q := newQueue[int](t, 2)
			var calls atomic.Int32
			task := func(context.Context) (int, error) {
				n := calls.Add(1)
				if fail {
					return 0, errors.New("boom")
				}
				return int(n), nil
			}

			f1 := q.Add(task, "k")
			_, err1 := f1.Wait(waitCtx(t))
			assert.Equal(t, 0, q.Stats().Pending, "结束后 key 已移除")

			f2 := q.Add(task, "k")
			assert.NotSame(t, f1, f2)
			v2, err2 := f2.Wait(waitCtx(t))

			assert.Equal(t, int32(2), calls.Load())
			if fail {
				assert.Error(t, err1)
				assert.Error(t, err2)
			} else {
				assert.Equal(t, 2, v2)
			}
		})
	}
}

func TestQueue_FailureIsolation(t *testing.T) {
	q := newQueue[string](t, 2)
	boom := errors.New("404")

	bad := q.Add(func(context.Context) (string, error) { return "", boom }, "bad")
	badAgain := q.Add(func(context.Context) (string, error) { return "never", nil }, "bad")
	good := q.Add(func(context.Context) (string, error) { return "ok", nil }, "good")

	_, err := bad.Wait(waitCtx(t))
	assert.ErrorIs(t, err, boom)
	_, err = badAgain.Wait(waitCtx(t))
	assert.ErrorIs(t, err, boom, "共享 key 的调用方一起失败")

	v, err := good.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := newQueue[int](t, 1)

	var mu sync.Mutex
	var order []int
	gate := make(chan struct{})

	q.Add(func(context.Context) (int, error) { <-gate; return 0, nil }, "")
	var last *Future[int]
	for i := 1; i <= 5; i++ {
		i := i
		last = q.Add(func(context.Context) (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}, fmt.Sprintf("k%d", i))
	}

	close(gate)
	_, err := last.Wait(waitCtx(t))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestQueue_PanicRecovered(t *testing.T) {
	q := newQueue[int](t, 1)

	_, err := q.Do(waitCtx(t), func(context.Context) (int, error) { panic("kaboom") }, "p")
	assert.ErrorIs(t, err, ErrTaskPanicked)

	v, err := q.Do(waitCtx(t), func(context.Context) (int, error) { return 7, nil }, "p")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, Stats{}, q.Stats())
}

func TestQueue_TaskTimeout(t *testing.T) {
	q, err := New[int](&Config{MaxConcurrent: 1, TaskTimeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = q.Do(waitCtx(t), func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, "hung")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := q.Do(waitCtx(t), func(context.Context) (int, error) { return 1, nil }, "next")
	require.NoError(t, err)
	assert.Equal(t, 1, v, "超时任务释放了槽位")
}

// 调用方放弃等待后，任务仍会完成并释放槽位
func TestQueue_AbandonedCaller(t *testing.T) {
	q := newQueue[int](t, 1)
	gate := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	f := q.Add(func(context.Context) (int, error) { <-gate; return 1, nil }, "k")
	cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(gate)
	require.Eventually(t, func() bool { return q.Stats() == Stats{} }, waitTimeout, time.Millisecond)
	v, err := f.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestQueue_Close(t *testing.T) {
	q, err := New[int](&Config{MaxConcurrent: 1})
	require.NoError(t, err)

	gate := make(chan struct{})
	running := q.Add(func(context.Context) (int, error) { <-gate; return 1, nil }, "running")
	queued := q.Add(func(context.Context) (int, error) { return 2, nil }, "queued")

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, q.Close(short), "运行中的任务未结束")

	_, err = queued.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = q.Add(func(context.Context) (int, error) { return 3, nil }, "").Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrClosed)

	close(gate)
	v, err := running.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.NoError(t, q.Close(waitCtx(t)))
}

func TestQueue_NilTask(t *testing.T) {
	q := newQueue[int](t, 1)
	_, err := q.Add(nil, "x").Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrNilTask)
}
