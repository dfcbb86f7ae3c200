package broadcast

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/xerrors"
)

// natsTransport NATS Core 发布订阅，无持久化
type natsTransport struct {
	conn   connector.NATSConnector
	prefix string
}

func newNATSTransport(conn connector.NATSConnector, prefix string) *natsTransport {
	return &natsTransport{conn: conn, prefix: prefix}
}

func (t *natsTransport) name() string { return DriverNATS }

func (t *natsTransport) topic(key string) string { return t.prefix + "." + key }

func (t *natsTransport) client() (*nats.Conn, error) {
	nc := t.conn.GetClient()
	if nc == nil {
		return nil, connector.ErrNotConnected
	}
	return nc, nil
}

func (t *natsTransport) publish(ctx context.Context, topic string, data []byte) error {
	// NATS Core 的 Publish 不接受 context，这里只做取消检查
	if err := ctx.Err(); err != nil {
		return err
	}
	nc, err := t.client()
	if err != nil {
		return err
	}
	return xerrors.Wrapf(nc.Publish(topic, data), "publish to %s", topic)
}

func (t *natsTransport) subscribe(_ context.Context, topic string, deliver func([]byte)) (func() error, error) {
	nc, err := t.client()
	if err != nil {
		return nil, err
	}
	sub, err := nc.Subscribe(topic, func(msg *nats.Msg) {
		deliver(msg.Data)
	})
	if err != nil {
		return nil, xerrors.Wrapf(err, "subscribe to %s", topic)
	}
	return sub.Unsubscribe, nil
}
