package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/serializer"
	"github.com/ceyewan/portalgun/xerrors"
)

// New 按 cfg.Driver 创建 Channel。
// nats 与 redis 驱动需要通过 WithNATS / WithRedis 提供已连接的连接器。
func New(cfg *Config, opts ...Option) (Channel, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	codec, err := serializer.New(cfg.Serializer)
	if err != nil {
		return nil, err
	}

	var tr transport
	switch cfg.Driver {
	case DriverNATS:
		if o.nats == nil {
			return nil, ErrConnectorRequired
		}
		tr = newNATSTransport(o.nats, cfg.Prefix)
	case DriverRedis:
		if o.redis == nil {
			return nil, ErrConnectorRequired
		}
		tr = newRedisTransport(o.redis, cfg.Prefix)
	default:
		// 未指定 Hub 时通道独占一个新 Hub，只有自己的订阅
		hub := o.hub
		if hub == nil {
			hub = NewHub()
		}
		tr = hub
	}

	m, err := newChannelMetrics(o.meter, tr.name())
	if err != nil {
		return nil, err
	}

	return &channel{
		tr:      tr,
		codec:   codec,
		origin:  o.origin,
		logger:  o.logger.With(clog.String("driver", tr.name()), clog.String("origin", o.origin)),
		metrics: m,
		subs:    make(map[*subscription]struct{}),
	}, nil
}

// NewMemory 在指定 Hub 上创建 Channel，常用于测试与单进程多上下文
func NewMemory(hub *Hub, opts ...Option) (Channel, error) {
	return New(&Config{Driver: DriverMemory}, append(opts, WithHub(hub))...)
}

type channel struct {
	tr      transport
	codec   serializer.Serializer
	origin  string
	logger  clog.Logger
	metrics *channelMetrics

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func (c *channel) Origin() string { return c.origin }

func (c *channel) Publish(ctx context.Context, key string, newValue *string) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	data, err := c.codec.Marshal(Notification{
		Key:       key,
		NewValue:  newValue,
		Origin:    c.origin,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return xerrors.Wrap(err, "broadcast: encode notification")
	}

	if err := c.tr.publish(ctx, c.tr.topic(key), data); err != nil {
		c.metrics.published(ctx, key, err)
		c.logger.WarnContext(ctx, "publish failed", clog.String("key", key), clog.Error(err))
		return xerrors.Wrap(err, "broadcast")
	}
	c.metrics.published(ctx, key, nil)
	return nil
}

func (c *channel) Subscribe(ctx context.Context, key string, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	hctx := context.WithoutCancel(ctx)
	unsubscribe, err := c.tr.subscribe(ctx, c.tr.topic(key), func(data []byte) {
		c.receive(hctx, key, data, handler)
	})
	if err != nil {
		return nil, err
	}

	sub := &subscription{ch: c, unsubscribe: unsubscribe}
	c.subs[sub] = struct{}{}
	c.logger.Debug("subscribed", clog.String("key", key))
	return sub, nil
}

func (c *channel) receive(ctx context.Context, key string, data []byte, handler Handler) {
	var n Notification
	if err := c.codec.Unmarshal(data, &n); err != nil {
		c.metrics.received(ctx, key, outcomeInvalid)
		c.logger.Debug("drop undecodable notification", clog.String("key", key), clog.Error(err))
		return
	}
	if n.Origin == c.origin {
		c.metrics.received(ctx, key, outcomeSelf)
		return
	}
	if n.Key != key {
		c.metrics.received(ctx, key, outcomeInvalid)
		return
	}

	c.metrics.received(ctx, key, outcomeDelivered)
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("notification handler panicked", clog.String("key", key), clog.Any("panic", r))
		}
	}()
	handler(ctx, n)
}

// Close 取消所有订阅，可重复调用
func (c *channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	var errs xerrors.Collector
	for sub := range subs {
		errs.Collect(sub.close())
	}
	return errs.Err()
}

func (c *channel) remove(sub *subscription) {
	c.mu.Lock()
	delete(c.subs, sub)
	c.mu.Unlock()
}

type subscription struct {
	ch          *channel
	unsubscribe func() error
	once        sync.Once
	err         error
}

func (s *subscription) Unsubscribe() error {
	s.ch.remove(s)
	return s.close()
}

func (s *subscription) close() error {
	s.once.Do(func() {
		s.err = s.unsubscribe()
	})
	return s.err
}
