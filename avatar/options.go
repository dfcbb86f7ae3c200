package avatar

import (
	"net/http"
	"time"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
)

// Option 加载器选项
type Option func(*options)

type options struct {
	logger     clog.Logger
	meter      metrics.Meter
	httpClient *http.Client
	maxSize    int64
}

// WithLogger 注入日志记录器，追加 avatar 命名空间
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("avatar")
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

// WithHTTPClient 替换默认 HTTP 客户端
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithMaxSize 单张图片的大小上限，超出时加载失败 (默认: 4MiB)
func WithMaxSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

func applyOptions(opts []Option) *options {
	o := &options{
		logger:     clog.Discard(),
		meter:      metrics.Discard(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxSize:    4 << 20,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
