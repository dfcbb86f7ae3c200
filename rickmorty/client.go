// Package rickmorty 是 Rick and Morty 公共 API 的客户端。
//
// 列表、详情与批量查询走 GraphQL，已删除视图按 ID 走 REST。
// 所有请求共享同一个限流器与熔断器，对 429、5xx 与超时做指数退避重试。
package rickmorty

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/xerrors"
)

// 响应体上限，防止异常响应占满内存
const maxBodySize = 8 << 20

// Client 上游 API 客户端，并发安全
type Client struct {
	cfg     *Config
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  clog.Logger
	metrics *clientMetrics
}

// New 创建客户端，cfg 为 nil 时使用 DefaultConfig
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	cm, err := newClientMetrics(o.meter)
	if err != nil {
		return nil, xerrors.Wrap(err, "rickmorty: create metrics")
	}

	hc := o.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		cfg:     cfg,
		http:    hc,
		logger:  o.logger,
		metrics: cm,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:         "rickmorty",
		MaxRequests:  cfg.Breaker.MaxRequests,
		Timeout:      cfg.Breaker.Timeout,
		ReadyToTrip:  c.readyToTrip,
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				clog.String("from", from.String()),
				clog.String("to", to.String()))
			c.metrics.stateChange(to.String())
		},
	})

	c.logger.Info("rickmorty client created",
		clog.String("graphql", cfg.GraphQLEndpoint),
		clog.String("rest", cfg.RESTEndpoint),
		clog.Float64("rate_limit", cfg.RateLimit))
	return c, nil
}

func (c *Client) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < c.cfg.Breaker.MinimumRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.cfg.Breaker.FailureRatio
}

// isSuccessful 客户端错误与主动取消不计入熔断失败
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && !se.Retryable()
}

// retryable 429、5xx 与超时可重试
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.cfg.Retry.InitialInterval
	eb.MaxInterval = c.cfg.Retry.MaxInterval
	eb.RandomizationFactor = c.cfg.Retry.Jitter
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.cfg.Retry.MaxAttempts-1)), ctx)
}

// do 发送请求并返回 2xx 响应体。newReq 每次尝试都会被调用，请求体不会被重复消费。
func (c *Client) do(ctx context.Context, op string, newReq func(context.Context) (*http.Request, error)) ([]byte, error) {
	start := time.Now()
	attempt := 0
	var body []byte

	operation := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		req, err := newReq(ctx)
		if err != nil {
			return backoff.Permanent(xerrors.Wrap(err, "rickmorty: build request"))
		}
		body, err = c.cb.Execute(func() ([]byte, error) { return c.roundTrip(req) })
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(xerrors.Wrap(ErrCircuitOpen, err.Error()))
		case retryable(err):
			return err
		default:
			return backoff.Permanent(err)
		}
	}

	err := backoff.RetryNotify(operation, c.newBackOff(ctx), func(err error, wait time.Duration) {
		c.metrics.retry(ctx, op)
		c.logger.WarnContext(ctx, "retrying upstream request",
			clog.String("op", op),
			clog.Int("attempt", attempt),
			clog.Duration("backoff", wait),
			clog.Error(err))
	})
	c.metrics.observe(ctx, op, time.Since(start), err)
	if err != nil {
		c.logger.DebugContext(ctx, "upstream request failed", clog.String("op", op), clog.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *Client) roundTrip(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, xerrors.Wrap(err, "rickmorty: read body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}
	return body, nil
}

func snippet(b []byte) string {
	const n = 256
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
