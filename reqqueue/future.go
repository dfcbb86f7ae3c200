package reqqueue

import "context"

// Future 一个排队任务的结果。
//
// 同一个去重 key 在任务未结束前得到的是同一个 *Future，
// 所有持有者在任务结束时拿到同样的结果。
type Future[T any] struct {
	key  string
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any](key string) *Future[T] {
	return &Future[T]{key: key, done: make(chan struct{})}
}

func failedFuture[T any](key string, err error) *Future[T] {
	f := newFuture[T](key)
	f.settle(*new(T), err)
	return f
}

// settle 只能调用一次
func (f *Future[T]) settle(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Key 返回去重 key，未去重的任务为空串
func (f *Future[T]) Key() string { return f.key }

// Done 任务结束时关闭
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait 等待结果。ctx 取消只代表调用方放弃等待，任务本身仍会执行完毕并释放槽位。
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
