package reqqueue

import (
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
)

// Option 队列选项
type Option func(*options)

type options struct {
	name   string
	logger clog.Logger
	meter  metrics.Meter
}

// WithName 设置队列名，用作指标标签和日志字段
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger 注入日志记录器，自动追加 reqqueue 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("reqqueue")
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

func applyOptions(opts ...Option) *options {
	o := &options{
		name:   "default",
		logger: clog.Discard(),
		meter:  metrics.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
