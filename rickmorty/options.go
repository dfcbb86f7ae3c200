package rickmorty

import (
	"net/http"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
)

// Option 客户端选项
type Option func(*options)

type options struct {
	logger     clog.Logger
	meter      metrics.Meter
	httpClient *http.Client
}

// WithLogger 注入日志记录器，追加 rickmorty 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("rickmorty")
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

// WithHTTPClient 替换底层 HTTP 客户端，其 Timeout 优先于 Config.Timeout
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
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
