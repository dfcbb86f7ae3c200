// Package testkit 提供测试用的通用依赖与外部服务容器。
//
// 单元测试只使用内存与临时目录里的依赖；需要 Redis 或 NATS 的集成测试
// 通过 testcontainers 启动容器，Docker 不可用或 -short 时自动跳过。
package testkit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/storage"
)

// Kit 包含通用的测试依赖
type Kit struct {
	Ctx    context.Context
	Logger clog.Logger
	Meter  metrics.Meter
}

// NewKit 返回一个包含默认依赖的测试工具包，ctx 在测试结束时取消
func NewKit(t *testing.T) *Kit {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &Kit{
		Ctx:    ctx,
		Logger: NewLogger(),
		Meter:  NewMeter(),
	}
}

// NewLogger 返回 error 级别的 logger，避免测试输出过多
func NewLogger() clog.Logger {
	logger, err := clog.New(&clog.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewMeter 返回启用的 meter，指标可以通过 Handler 抓取
func NewMeter() metrics.Meter {
	meter, err := metrics.New(metrics.NewDevDefaultConfig("portalgun-test"))
	if err != nil {
		return metrics.Discard()
	}
	return meter
}

// NewContext 返回带超时的上下文，测试结束时取消
func NewContext(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// NewID 返回一个唯一的测试 ID (UUID v4 前 8 位)，用于生成互不冲突的键前缀
func NewID() string {
	return uuid.New().String()[0:8]
}

// NewMemoryStorage 返回内存存储
func NewMemoryStorage(t *testing.T) storage.Storage {
	st, err := storage.NewMemory(0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// NewMemoryChannel 在 hub 上创建一个执行上下文的广播通道
func NewMemoryChannel(t *testing.T, hub *broadcast.Hub) broadcast.Channel {
	ch, err := broadcast.NewMemory(hub)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	return ch
}
