// Package config 提供基于 Viper 的配置加载与热更新。
//
// 优先级（高到低）：环境变量 > .env > 环境特定配置 (config.<env>.yaml) > 基础配置 > 默认值。
// 环境由 <PREFIX>_ENV 指定，默认前缀为 PORTALGUN。
//
//	loader, err := config.New(
//		config.WithConfigPaths("./config"),
//		config.WithDefaults(bootstrap.Defaults()),
//	)
//	if err := loader.Load(ctx); err != nil { ... }
//
//	var cfg bootstrap.AppConfig
//	_ = loader.Unmarshal(&cfg)
//
//	ch, _ := loader.Watch(ctx, "log.level")
//	for ev := range ch {
//		logger.SetLevel(...)
//	}
package config

import (
	"context"
	"time"
)

// Loader 配置加载器
type Loader interface {
	// Load 读取所有来源并开始监听配置文件变化
	Load(ctx context.Context) error

	// Get 获取原始配置值
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体（mapstructure 标签）
	Unmarshal(v any) error

	// UnmarshalKey 将指定 key 反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听 key 的变化，ctx 取消后通道关闭
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 校验当前配置
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string
	Value     any
	OldValue  any
	Source    string // "file"
	Timestamp time.Time
}
