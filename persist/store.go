// Package persist 提供以单个存储键为后端、跨上下文同步的状态容器。
//
// 一个 Store 持有一份内存快照：
//   - 构造时从存储加载，键不存在、读取失败或内容损坏都回退为空值，构造不会因此失败
//   - Mutate 在锁内应用纯函数，替换快照，同步写入存储，然后广播新值
//   - 其他上下文广播的新值整体替换本地快照（后到者生效，不合并）
//
// 写入失败只记录日志和指标，并交给 WithPersistErrorHandler，内存快照仍然生效。
//
// 通道无法到达共享同一存储的其他进程时，WithReadThrough 让每次变更先读取存储，
// WithPollInterval 定期读取存储，避免覆盖或错过其他进程的写入。
//
//	favs, _ := persist.New(ctx, storage.KeyFavorites, persist.IDSetCodec{}, st, ch)
//	favs.Mutate(ctx, func(s model.IDSet) model.IDSet { return s.With(id) })
package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/storage"
)

// Store 同步到存储与广播通道的状态容器，并发安全。
//
// T 按值语义使用：操作函数必须返回新值，不能修改传入的快照。
type Store[T any] struct {
	key     string
	codec   Codec[T]
	st      storage.Storage
	ch      broadcast.Channel
	logger  clog.Logger
	metrics *storeMetrics
	onErr   PersistErrorHandler

	readThrough bool

	// mu 串行化本地变更与远端替换
	mu  sync.Mutex
	sub broadcast.Subscription
	raw string // 最近一次与存储一致的编码值，mu 保护

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	stateMu sync.RWMutex
	state   T

	watchMu  sync.Mutex
	watchers map[int]func(T)
	nextID   int
}

// New 创建 Store 并立即加载。ch 为 nil 时不做跨上下文同步。
func New[T any](ctx context.Context, key string, codec Codec[T], st storage.Storage, ch broadcast.Channel, opts ...Option) (*Store[T], error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	if codec == nil {
		return nil, ErrNilCodec
	}
	if st == nil {
		return nil, ErrNilStorage
	}
	o := applyOptions(opts)

	m, err := newStoreMetrics(o.meter, key)
	if err != nil {
		return nil, err
	}

	s := &Store[T]{
		key:         key,
		codec:       codec,
		st:          st,
		ch:          ch,
		logger:      o.logger.With(clog.String("key", key)),
		metrics:     m,
		onErr:       o.onPersist,
		readThrough: o.readThrough,
		watchers:    make(map[int]func(T)),
	}
	s.state, s.raw = s.load(ctx)

	if ch != nil {
		sub, err := ch.Subscribe(ctx, key, s.onRemote)
		if err != nil {
			return nil, err
		}
		s.sub = sub
	}

	if o.pollInterval > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.poll(o.pollInterval)
	}
	return s, nil
}

func (s *Store[T]) load(ctx context.Context) (T, string) {
	raw, ok, err := s.st.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "load failed, starting empty", clog.Error(err))
		return s.codec.Empty(), ""
	}
	if !ok {
		return s.codec.Empty(), ""
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "stored value is corrupt, starting empty", clog.Error(err))
		return s.codec.Empty(), ""
	}
	s.inspect(ctx, v)
	return v, raw
}

// inspect 记录解码时被宽松处理的记录
func (s *Store[T]) inspect(ctx context.Context, v T) {
	in, ok := s.codec.(Inspector[T])
	if !ok {
		return
	}
	for _, problem := range in.Inspect(v) {
		s.logger.WarnContext(ctx, "stored record partially unreadable", clog.String("problem", problem))
	}
}

// refreshLocked 重新读取存储，内容与上次不同时整体替换快照。
// 键缺失、读取失败或内容损坏时保留内存快照。调用方持有 mu。
func (s *Store[T]) refreshLocked(ctx context.Context) {
	raw, ok, err := s.st.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh failed, keeping in-memory state", clog.Error(err))
		return
	}
	if !ok || raw == s.raw {
		return
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "stored value is corrupt, keeping in-memory state", clog.Error(err))
		return
	}
	s.inspect(ctx, v)
	s.raw = raw
	s.replace(v)
	s.metrics.remote(ctx, outcomeRefreshed)
	s.logger.Debug("refreshed from storage")
	s.notify(v)
}

func (s *Store[T]) poll(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			s.mu.Lock()
			s.refreshLocked(ctx)
			s.mu.Unlock()
			cancel()
		case <-s.stop:
			return
		}
	}
}

// Key 返回存储键
func (s *Store[T]) Key() string { return s.key }

// Get 返回当前快照，调用方不得修改
func (s *Store[T]) Get() T {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Mutate 应用 op 并持久化，返回新快照
func (s *Store[T]) Mutate(ctx context.Context, op func(T) T) T {
	next, _ := s.Update(ctx, func(cur T) (T, error) { return op(cur), nil })
	return next
}

// Update 与 Mutate 相同，但 op 返回错误时不做任何改动，返回当前快照和该错误。
// op 返回 ErrUnchanged 时同样不做改动，但返回 nil。
func (s *Store[T]) Update(ctx context.Context, op func(T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readThrough {
		s.refreshLocked(ctx)
	}
	cur := s.Get()
	next, err := op(cur)
	if errors.Is(err, ErrUnchanged) {
		return cur, nil
	}
	if err != nil {
		return cur, err
	}
	s.replace(next)
	s.persist(ctx, next)
	s.notify(next)
	return next, nil
}

func (s *Store[T]) persist(ctx context.Context, v T) {
	raw, err := s.codec.Encode(v)
	if err == nil {
		err = s.st.Set(ctx, s.key, raw)
	}
	if err != nil {
		s.metrics.writeFailed(ctx)
		s.logger.WarnContext(ctx, "persist failed, keeping in-memory state", clog.Error(err))
		if s.onErr != nil {
			s.onErr(s.key, err)
		}
		return
	}
	s.metrics.written(ctx)
	s.raw = raw

	if s.ch == nil {
		return
	}
	if err := s.ch.Publish(ctx, s.key, &raw); err != nil {
		s.logger.WarnContext(ctx, "broadcast failed", clog.Error(err))
	}
}

// onRemote 处理其他上下文的变更：删除或无法解析的值被忽略，否则整体替换
func (s *Store[T]) onRemote(ctx context.Context, n broadcast.Notification) {
	if n.NewValue == nil {
		s.metrics.remote(ctx, outcomeIgnored)
		return
	}
	v, err := s.codec.Decode(*n.NewValue)
	if err != nil {
		s.metrics.remote(ctx, outcomeIgnored)
		s.logger.Debug("ignore undecodable remote value", clog.String("origin", n.Origin), clog.Error(err))
		return
	}

	s.inspect(ctx, v)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = *n.NewValue
	s.replace(v)
	s.metrics.remote(ctx, outcomeApplied)
	s.logger.Debug("applied remote value", clog.String("origin", n.Origin))
	s.notify(v)
}

func (s *Store[T]) replace(v T) {
	s.stateMu.Lock()
	s.state = v
	s.stateMu.Unlock()
}

// Watch 注册观察者，每次快照变化（本地或远端）都会以新快照调用。
// fn 在变更锁内调用，可以调用 Get，不能同步调用 Mutate。
func (s *Store[T]) Watch(fn func(T)) (cancel func()) {
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

func (s *Store[T]) notify(v T) {
	s.watchMu.Lock()
	fns := make([]func(T), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Close 停止轮询并取消跨上下文订阅。存储与通道由调用方关闭。
func (s *Store[T]) Close() error {
	s.closeOnce.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return nil
	}
	err := s.sub.Unsubscribe()
	s.sub = nil
	return err
}
