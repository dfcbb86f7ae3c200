package storage

import (
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/metrics"
)

// Option 存储选项
type Option func(*options)

type options struct {
	logger clog.Logger
	meter  metrics.Meter
	redis  connector.RedisConnector
	sqlite connector.SQLiteConnector
}

// WithLogger 注入日志记录器，追加 storage 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("storage")
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

// WithRedis 提供 redis 驱动使用的连接器
func WithRedis(conn connector.RedisConnector) Option {
	return func(o *options) {
		o.redis = conn
	}
}

// WithSQLite 提供 sqlite 驱动使用的连接器
func WithSQLite(conn connector.SQLiteConnector) Option {
	return func(o *options) {
		o.sqlite = conn
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
