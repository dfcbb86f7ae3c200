package connector

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/xerrors"
)

// NATS 连接指标
const (
	MetricNATSConnects   = "connector_nats_connects_total"
	MetricNATSReconnects = "connector_nats_reconnects_total"
	MetricNATSActive     = "connector_nats_active_connections"
)

type natsConnector struct {
	cfg     *NATSConfig
	logger  clog.Logger
	healthy atomic.Bool

	mu   sync.RWMutex
	conn *nats.Conn

	connects   metrics.Counter
	reconnects metrics.Counter
	active     metrics.Gauge
	label      metrics.Label
}

// NewNATS 创建 NATS 连接器
func NewNATS(cfg *NATSConfig, opts ...Option) (NATSConnector, error) {
	if cfg == nil {
		return nil, xerrors.Wrap(ErrConfig, "nats config is nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	opt := applyOptions(opts)

	c := &natsConnector{
		cfg:    cfg,
		logger: opt.logger.With(clog.String("connector", "nats"), clog.String("name", cfg.Name)),
		label:  metrics.L("connector", cfg.Name),
	}

	var err error
	if c.connects, err = opt.meter.Counter(MetricNATSConnects, "NATS connection attempts by outcome."); err != nil {
		return nil, xerrors.Wrap(err, "create nats connects counter")
	}
	if c.reconnects, err = opt.meter.Counter(MetricNATSReconnects, "NATS automatic reconnects."); err != nil {
		return nil, xerrors.Wrap(err, "create nats reconnects counter")
	}
	if c.active, err = opt.meter.Gauge(MetricNATSActive, "Active NATS connections."); err != nil {
		return nil, xerrors.Wrap(err, "create nats active gauge")
	}

	return c, nil
}

// Connect 建立连接
func (c *natsConnector) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	c.logger.Info("attempting to connect to nats", clog.String("url", c.cfg.URL))

	natsOpts := []nats.Option{
		nats.Name(c.cfg.Name),
		nats.ReconnectWait(c.cfg.ReconnectWait),
		nats.MaxReconnects(c.cfg.MaxReconnects),
		nats.PingInterval(c.cfg.PingInterval),
		nats.MaxPingsOutstanding(c.cfg.MaxPingsOut),
		nats.Timeout(c.cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.healthy.Store(false)
			c.logger.Warn("nats disconnected", clog.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.healthy.Store(true)
			c.reconnects.Inc(context.Background(), c.label)
			c.logger.Info("nats reconnected", clog.String("url", nc.ConnectedUrl()))
		}),
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		natsOpts = append(natsOpts, nats.UserInfo(c.cfg.Username, c.cfg.Password))
	}
	if c.cfg.Token != "" {
		natsOpts = append(natsOpts, nats.Token(c.cfg.Token))
	}

	conn, err := nats.Connect(c.cfg.URL, natsOpts...)
	if err != nil {
		c.connects.Inc(ctx, c.label, metrics.L(metrics.LabelOutcome, metrics.OutcomeError))
		c.logger.Error("failed to connect to nats", clog.Error(err), clog.String("url", c.cfg.URL))
		return xerrors.Wrapf(ErrConnection, "nats connector[%s]: %v", c.cfg.Name, err)
	}

	c.conn = conn
	c.connects.Inc(ctx, c.label, metrics.L(metrics.LabelOutcome, metrics.OutcomeSuccess))
	c.active.Set(ctx, 1, c.label)
	c.healthy.Store(true)
	c.logger.Info("successfully connected to nats", clog.String("url", c.cfg.URL))
	return nil
}

// Close 排空并关闭连接
func (c *natsConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.healthy.Store(false)
	if c.conn == nil {
		return nil
	}

	c.active.Set(context.Background(), 0, c.label)
	c.conn.Close()
	c.conn = nil
	c.logger.Info("nats connection closed")
	return nil
}

// HealthCheck 检查连接状态
func (c *natsConnector) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		c.healthy.Store(false)
		return xerrors.Wrapf(ErrNotConnected, "nats connector[%s]", c.cfg.Name)
	}

	if status := conn.Status(); status != nats.CONNECTED {
		c.healthy.Store(false)
		return xerrors.Wrapf(ErrHealthCheck, "nats connector[%s]: status %s", c.cfg.Name, status)
	}
	if err := conn.FlushWithContext(ctx); err != nil {
		c.healthy.Store(false)
		return xerrors.Wrapf(ErrHealthCheck, "nats connector[%s]: %v", c.cfg.Name, err)
	}

	c.healthy.Store(true)
	return nil
}

func (c *natsConnector) IsHealthy() bool { return c.healthy.Load() }

func (c *natsConnector) Name() string { return c.cfg.Name }

// GetClient 返回 NATS 连接
func (c *natsConnector) GetClient() *nats.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn
}
