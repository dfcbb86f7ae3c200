package broadcast

import (
	"context"

	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/xerrors"
)

// redisTransport Redis Pub/Sub，无持久化
type redisTransport struct {
	conn   connector.RedisConnector
	prefix string
}

func newRedisTransport(conn connector.RedisConnector, prefix string) *redisTransport {
	return &redisTransport{conn: conn, prefix: prefix}
}

func (t *redisTransport) name() string { return DriverRedis }

func (t *redisTransport) topic(key string) string { return t.prefix + ":" + key }

func (t *redisTransport) publish(ctx context.Context, topic string, data []byte) error {
	err := t.conn.GetClient().Publish(ctx, topic, data).Err()
	return xerrors.Wrapf(err, "publish to %s", topic)
}

func (t *redisTransport) subscribe(ctx context.Context, topic string, deliver func([]byte)) (func() error, error) {
	ps := t.conn.GetClient().Subscribe(ctx, topic)
	// 等待订阅确认，之后发布的消息保证可达
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, xerrors.Wrapf(err, "subscribe to %s", topic)
	}

	msgs := ps.Channel()
	go func() {
		for msg := range msgs {
			deliver([]byte(msg.Payload))
		}
	}()
	return ps.Close, nil
}
