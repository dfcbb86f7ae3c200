package broadcast

import (
	"github.com/google/uuid"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/metrics"
)

// Option 广播选项
type Option func(*options)

type options struct {
	logger clog.Logger
	meter  metrics.Meter
	origin string
	hub    *Hub
	nats   connector.NATSConnector
	redis  connector.RedisConnector
}

// WithLogger 注入日志记录器，追加 broadcast 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("broadcast")
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

// WithOrigin 指定上下文标识，默认随机 UUID
func WithOrigin(origin string) Option {
	return func(o *options) {
		if origin != "" {
			o.origin = origin
		}
	}
}

// WithHub memory 驱动使用的 Hub。共享同一 Hub 的通道互相可见，未指定时每个通道各用一个新 Hub
func WithHub(hub *Hub) Option {
	return func(o *options) {
		o.hub = hub
	}
}

// WithNATS nats 驱动使用的连接器
func WithNATS(conn connector.NATSConnector) Option {
	return func(o *options) {
		o.nats = conn
	}
}

// WithRedis redis 驱动使用的连接器
func WithRedis(conn connector.RedisConnector) Option {
	return func(o *options) {
		o.redis = conn
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		logger: clog.Discard(),
		meter:  metrics.Discard(),
		origin: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
