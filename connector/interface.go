// Package connector 管理 portalgun 用到的外部连接：Redis、NATS 与 SQLite。
//
// 约定：
//   - NewXXX 只创建连接器，Connect 时才真正建立连接，Connect 幂等
//   - 连接器拥有底层客户端的生命周期；storage、broadcast 只借用客户端，不负责 Close
//   - 应用层按 LIFO 顺序释放：先关闭借用方，再关闭连接器
//
// 基本使用：
//
//	conn, err := connector.NewRedis(&connector.RedisConfig{Addr: "127.0.0.1:6379"},
//		connector.WithLogger(logger), connector.WithMeter(meter))
//	if err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	if err := conn.Connect(ctx); err != nil {
//		return err
//	}
//	st, err := storage.NewRedis(conn, &storage.Config{Prefix: "portalgun:"})
package connector

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Connector 所有连接器的通用行为，方法均并发安全。
type Connector interface {
	// Connect 建立连接，幂等
	Connect(ctx context.Context) error

	// Close 关闭连接，幂等。关闭后 HealthCheck 返回 ErrNotConnected。
	Close() error

	// HealthCheck 主动探测，并更新 IsHealthy 的缓存结果
	HealthCheck(ctx context.Context) error

	// IsHealthy 返回最后一次探测的结果，不阻塞
	IsHealthy() bool

	// Name 连接器实例名，用于日志和指标
	Name() string
}

// TypedConnector 提供类型安全的客户端访问
type TypedConnector[T any] interface {
	Connector

	// GetClient 返回底层客户端。Connect 之前或 Close 之后可能为 nil。
	GetClient() T
}

// RedisConnector Redis 连接器，供 storage 与 broadcast 的 redis 驱动使用
type RedisConnector interface {
	TypedConnector[*redis.Client]
}

// NATSConnector NATS 连接器，供 broadcast 的 nats 驱动使用
type NATSConnector interface {
	TypedConnector[*nats.Conn]
}

// SQLiteConnector SQLite 连接器，供 storage 的 sqlite 驱动使用
type SQLiteConnector interface {
	TypedConnector[*gorm.DB]
}
