package bootstrap

import (
	"context"
	"time"

	"github.com/ceyewan/portalgun/broadcast"
	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/config"
	"github.com/ceyewan/portalgun/connector"
	"github.com/ceyewan/portalgun/metrics"
	"github.com/ceyewan/portalgun/reqqueue"
	"github.com/ceyewan/portalgun/rickmorty"
	"github.com/ceyewan/portalgun/server"
	"github.com/ceyewan/portalgun/storage"
	"github.com/ceyewan/portalgun/xerrors"
)

// AppConfig 应用的完整配置
type AppConfig struct {
	Log       clog.Config            `mapstructure:"log"`
	Metrics   metrics.Config         `mapstructure:"metrics"`
	Storage   storage.Config         `mapstructure:"storage"`
	Broadcast broadcast.Config       `mapstructure:"broadcast"`
	Redis     connector.RedisConfig  `mapstructure:"redis"`
	NATS      connector.NATSConfig   `mapstructure:"nats"`
	SQLite    connector.SQLiteConfig `mapstructure:"sqlite"`
	Queue     reqqueue.Config        `mapstructure:"queue"`
	RickMorty rickmorty.Config       `mapstructure:"rickmorty"`
	Server    server.Config          `mapstructure:"server"`
	Sync      SyncConfig             `mapstructure:"sync"`
}

// SyncConfig 共享存储而广播只在进程内送达时的同步方式
type SyncConfig struct {
	// PollInterval 轮询存储的间隔，0 关闭轮询 (默认: 2s)
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Defaults 所有配置项的默认值。
// 环境变量只能覆盖 viper 已知的 key，因此每个可配置项都在这里列出。
func Defaults() map[string]any {
	return map[string]any{
		"log.level":      "info",
		"log.format":     "console",
		"log.output":     "stderr",
		"log.add_source": false,

		"metrics.enabled":        false,
		"metrics.service_name":   "portalgun",
		"metrics.version":        "dev",
		"metrics.enable_runtime": false,

		"storage.driver":   storage.DriverSQLite,
		"storage.prefix":   "portalgun:",
		"storage.capacity": 0,

		"broadcast.driver":     broadcast.DriverMemory,
		"broadcast.prefix":     "",
		"broadcast.serializer": "json",

		"redis.addr":      "127.0.0.1:6379",
		"redis.password":  "",
		"redis.db":        0,
		"redis.pool_size": 10,

		"nats.url":      "nats://127.0.0.1:4222",
		"nats.username": "",
		"nats.password": "",
		"nats.token":    "",

		"sqlite.path":         "portalgun.db",
		"sqlite.busy_timeout": "5s",

		"queue.max_concurrent": reqqueue.DefaultMaxConcurrent,
		"queue.task_timeout":   "0s",

		"rickmorty.graphql_endpoint":         rickmorty.DefaultGraphQLEndpoint,
		"rickmorty.rest_endpoint":            rickmorty.DefaultRESTEndpoint,
		"rickmorty.timeout":                  "15s",
		"rickmorty.rate_limit":               5,
		"rickmorty.burst":                    5,
		"rickmorty.retry.initial_interval":   "2s",
		"rickmorty.retry.max_interval":       "10s",
		"rickmorty.retry.jitter":             0.5,
		"rickmorty.retry.max_attempts":       3,
		"rickmorty.breaker.failure_ratio":    0.6,
		"rickmorty.breaker.minimum_requests": 10,
		"rickmorty.breaker.timeout":          "30s",
		"rickmorty.breaker.max_requests":     1,

		"server.addr":             "127.0.0.1:8080",
		"server.mode":             "release",
		"server.read_timeout":     "15s",
		"server.write_timeout":    "60s",
		"server.shutdown_timeout": "10s",
		"server.avatar_hosts":     []string{"rickandmortyapi.com"},

		"sync.poll_interval": "2s",
	}
}

// LoadConfig 读取配置文件、.env 与环境变量。file 为空时按默认名称搜索。
func LoadConfig(ctx context.Context, file string, opts ...config.Option) (*AppConfig, config.Loader, error) {
	all := append([]config.Option{config.WithDefaults(Defaults())}, opts...)
	if file != "" {
		all = append(all, config.WithConfigFile(file))
	}
	loader, err := config.New(all...)
	if err != nil {
		return nil, nil, err
	}
	if err := loader.Load(ctx); err != nil {
		return nil, nil, xerrors.Wrap(err, "bootstrap: load config")
	}
	var cfg AppConfig
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, nil, xerrors.Wrap(err, "bootstrap: decode config")
	}
	return &cfg, loader, nil
}

// WatchLogLevel 配置文件中 log.level 变化时调整日志级别，ctx 取消后退出
func WatchLogLevel(ctx context.Context, loader config.Loader, logger clog.Logger) error {
	ch, err := loader.Watch(ctx, "log.level")
	if err != nil {
		return err
	}
	go func() {
		for ev := range ch {
			s, _ := ev.Value.(string)
			level, err := clog.ParseLevel(s)
			if err != nil {
				logger.Warn("ignoring invalid log level", clog.Any("value", ev.Value))
				continue
			}
			if err := logger.SetLevel(level); err != nil {
				logger.Warn("set log level failed", clog.Error(err))
				continue
			}
			logger.Info("log level changed", clog.String("level", level.String()))
		}
	}()
	return nil
}
