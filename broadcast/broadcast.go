// Package broadcast 在多个执行上下文之间广播存储变更通知。
//
// 一个上下文（一个 CLI 进程、一个 serve 进程、测试里的一个 Store）对应一个 Channel，
// 每个 Channel 有唯一的 Origin。发布的通知会送达订阅了同一个 key 的所有其他 Channel，
// 发布者自己收不到。
//
// 驱动：
//   - memory: 进程内 Hub，多个 Channel 共享同一个 Hub
//   - nats:   NATS Core 发布订阅，subject 为 <prefix>.<key>
//   - redis:  Redis Pub/Sub，channel 为 <prefix>:<key>
//
// 通知是尽力而为的：不持久化、不重放，订阅之前发布的通知不会送达。
package broadcast

import (
	"context"
	"time"
)

// Notification 一次存储变更。NewValue 为 nil 表示键被删除。
type Notification struct {
	Key       string    `json:"key"`
	NewValue  *string   `json:"newValue"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"ts"`
}

// Handler 处理其他上下文发来的通知。同一订阅内按到达顺序串行调用。
type Handler func(ctx context.Context, n Notification)

// Subscription 一个 key 上的订阅
type Subscription interface {
	Unsubscribe() error
}

// Channel 一个执行上下文的广播端点，并发安全
type Channel interface {
	// Publish 广播 key 的新值
	Publish(ctx context.Context, key string, newValue *string) error

	// Subscribe 订阅 key 上其他上下文的变更
	Subscribe(ctx context.Context, key string, handler Handler) (Subscription, error)

	// Origin 本上下文的唯一标识
	Origin() string

	// Close 取消所有订阅。借用的连接器与 Hub 不在此关闭。
	Close() error
}
