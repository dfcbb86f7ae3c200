package metrics

// Config 指标配置
//
//	metrics:
//	  enabled: true
//	  service_name: portalgun
//	  version: v0.1.0
//	  enable_runtime: true
type Config struct {
	// Enabled 为 false 时 New 返回 noop Meter
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`

	// EnableRuntime 采集 Go runtime 指标（goroutine、GC、内存）
	EnableRuntime bool `mapstructure:"enable_runtime"`
}

// NewDevDefaultConfig 开发环境默认配置
func NewDevDefaultConfig(serviceName string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: serviceName,
		Version:     "dev",
	}
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "portalgun"
	}
	if c.Version == "" {
		c.Version = "dev"
	}
}
