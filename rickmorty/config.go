package rickmorty

import (
	"time"

	"github.com/ceyewan/portalgun/xerrors"
)

// 上游默认地址
const (
	DefaultGraphQLEndpoint = "https://rickandmortyapi.com/graphql"
	DefaultRESTEndpoint    = "https://rickandmortyapi.com/api"
)

// Config 上游 API 客户端配置
//
//	rickmorty:
//	  graphql_endpoint: https://rickandmortyapi.com/graphql
//	  rest_endpoint: https://rickandmortyapi.com/api
//	  timeout: 15s
//	  rate_limit: 5
//	  retry:
//	    initial_interval: 2s
//	    max_interval: 10s
//	    max_attempts: 3
type Config struct {
	GraphQLEndpoint string        `mapstructure:"graphql_endpoint"`
	RESTEndpoint    string        `mapstructure:"rest_endpoint"`
	Timeout         time.Duration `mapstructure:"timeout"` // 单次请求超时 (默认: 15s)

	// RateLimit 每秒请求数，0 表示使用默认值 5，负数表示不限
	RateLimit float64 `mapstructure:"rate_limit"`
	Burst     int     `mapstructure:"burst"` // (默认: 5)

	Retry   RetryConfig   `mapstructure:"retry"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// RetryConfig 对 429、5xx 与超时做指数退避重试
type RetryConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval"` // (默认: 2s)
	MaxInterval     time.Duration `mapstructure:"max_interval"`     // (默认: 10s)
	Jitter          float64       `mapstructure:"jitter"`           // 随机因子 0~1 (默认: 0.5)
	MaxAttempts     int           `mapstructure:"max_attempts"`     // 含首次请求 (默认: 3)
}

// BreakerConfig 熔断配置
type BreakerConfig struct {
	FailureRatio    float64       `mapstructure:"failure_ratio"`    // (默认: 0.6)
	MinimumRequests uint32        `mapstructure:"minimum_requests"` // (默认: 10)
	Timeout         time.Duration `mapstructure:"timeout"`          // 打开状态持续时间 (默认: 30s)
	MaxRequests     uint32        `mapstructure:"max_requests"`     // 半开状态放行数 (默认: 1)
}

// DefaultConfig 返回指向公共 API 的默认配置
func DefaultConfig() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.GraphQLEndpoint == "" {
		c.GraphQLEndpoint = DefaultGraphQLEndpoint
	}
	if c.RESTEndpoint == "" {
		c.RESTEndpoint = DefaultRESTEndpoint
	}
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RateLimit == 0 {
		c.RateLimit = 5
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}

	if c.Retry.InitialInterval == 0 {
		c.Retry.InitialInterval = 2 * time.Second
	}
	if c.Retry.MaxInterval == 0 {
		c.Retry.MaxInterval = 10 * time.Second
	}
	if c.Retry.Jitter == 0 {
		c.Retry.Jitter = 0.5
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}

	if c.Breaker.FailureRatio == 0 {
		c.Breaker.FailureRatio = 0.6
	}
	if c.Breaker.MinimumRequests == 0 {
		c.Breaker.MinimumRequests = 10
	}
	if c.Breaker.Timeout == 0 {
		c.Breaker.Timeout = 30 * time.Second
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 1
	}
}

func (c *Config) validate() error {
	c.setDefaults()
	if c.Retry.MaxAttempts < 1 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "rickmorty: retry max_attempts must be at least 1")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "rickmorty: retry jitter must be within [0,1]")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "rickmorty: breaker failure_ratio must be within (0,1]")
	}
	return nil
}
