package config

import (
	"strings"

	"github.com/ceyewan/portalgun/clog"
)

// DefaultEnvPrefix 默认环境变量前缀，如 PORTALGUN_LOG_LEVEL
const DefaultEnvPrefix = "PORTALGUN"

// Option 配置加载器选项
type Option func(*options)

type options struct {
	name      string
	paths     []string
	fileType  string
	envPrefix string
	file      string
	defaults  map[string]any
	logger    clog.Logger
}

func defaultOptions() *options {
	return &options{
		name:      "config",
		paths:     []string{".", "./config"},
		fileType:  "yaml",
		envPrefix: DefaultEnvPrefix,
		logger:    clog.Discard(),
	}
}

// WithConfigName 设置配置文件名（不含扩展名）
func WithConfigName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithConfigPaths 覆盖配置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(o *options) {
		o.paths = paths
	}
}

// WithConfigFile 直接指定配置文件路径，忽略名称和搜索路径
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithConfigType 设置配置文件类型 (yaml, json, toml...)
func WithConfigType(typ string) Option {
	return func(o *options) {
		if typ != "" {
			o.fileType = typ
		}
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.envPrefix = strings.ToUpper(prefix)
		}
	}
}

// WithDefaults 注册默认值。
// 只有 viper 已知的 key 才会被环境变量覆盖，因此需要环境变量生效的 key 都应在这里声明。
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// WithLogger 注入日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("config")
		}
	}
}
