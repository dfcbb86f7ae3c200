package broadcast

import "context"

// transport 驱动需要实现的最小发布订阅能力，信封编解码与来源过滤由 channel 负责
type transport interface {
	name() string
	topic(key string) string
	publish(ctx context.Context, topic string, data []byte) error
	subscribe(ctx context.Context, topic string, deliver func(data []byte)) (unsubscribe func() error, err error)
}
