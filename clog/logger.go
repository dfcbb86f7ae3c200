// Package clog 为 portalgun 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层 slog 实现
//   - 层级命名空间，每个组件通过 WithNamespace 标识自己
//   - 从 Context 中提取 request_id 等字段
//   - 运行时调整日志级别（配置热更新时使用）
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{Level: "info", Format: "console"})
//	logger.Info("store loaded", clog.String("key", "rickandmorty_favorites"))
//
// 组件内使用：
//
//	queueLogger := logger.WithNamespace("reqqueue")
//	queueLogger.Debug("task admitted", clog.Int("running", 3))
package clog

import "context"

// Logger 日志接口
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// 带 Context 的版本会额外提取 WithContextField 注册的字段
	DebugContext(ctx context.Context, msg string, fields ...Field)
	InfoContext(ctx context.Context, msg string, fields ...Field)
	WarnContext(ctx context.Context, msg string, fields ...Field)
	ErrorContext(ctx context.Context, msg string, fields ...Field)
	FatalContext(ctx context.Context, msg string, fields ...Field)

	// With 返回携带预设字段的子 Logger
	With(fields ...Field) Logger

	// WithNamespace 追加命名空间，多级之间以 "." 连接
	//
	//   logger.WithNamespace("portalgun").WithNamespace("persist")
	//   // namespace=portalgun.persist
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整日志级别，对所有派生出的子 Logger 同时生效
	SetLevel(level Level) error

	// Flush 同步底层输出（文件输出时调用 Sync）
	Flush()
}
