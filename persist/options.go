package persist

import (
	"time"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
)

// Option Store 选项
type Option func(*options)

// PersistErrorHandler 写入存储失败时的回调
type PersistErrorHandler func(key string, err error)

type options struct {
	logger    clog.Logger
	meter     metrics.Meter
	onPersist PersistErrorHandler

	readThrough  bool
	pollInterval time.Duration
}

// WithLogger 注入日志记录器，追加 persist 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("persist")
		}
	}
}

// WithMeter 注入指标
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithPersistErrorHandler 写入失败时回调，内存状态不受影响
func WithPersistErrorHandler(fn PersistErrorHandler) Option {
	return func(o *options) {
		o.onPersist = fn
	}
}

// WithReadThrough 每次变更前重新读取存储，以其中的最新值为基础应用操作。
// 用于多个进程共享同一存储、而通道只在进程内送达的场景。
func WithReadThrough() Option {
	return func(o *options) {
		o.readThrough = true
	}
}

// WithPollInterval 按间隔重新读取存储，内容变化时替换快照并通知观察者。0 表示不轮询。
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		logger: clog.Discard(),
		meter:  metrics.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
