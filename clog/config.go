package clog

import (
	"fmt"
	"strings"
)

// TimeFormat 日志时间格式
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config 日志配置
//
//	log:
//	  level: info         # debug|info|warn|error|fatal
//	  format: console     # json|console
//	  output: stderr      # stdout|stderr|<file path>
//	  add_source: false
type Config struct {
	Level     string `mapstructure:"level" json:"level" yaml:"level"`
	Format    string `mapstructure:"format" json:"format" yaml:"format"`
	Output    string `mapstructure:"output" json:"output" yaml:"output"`
	AddSource bool   `mapstructure:"add_source" json:"addSource" yaml:"addSource"`
}

// NewDevDefaultConfig 开发环境默认配置：debug 级别、console 格式、输出到 stderr
func NewDevDefaultConfig() *Config {
	return &Config{
		Level:     "debug",
		Format:    "console",
		Output:    "stderr",
		AddSource: true,
	}
}

// NewProdDefaultConfig 生产环境默认配置：info 级别、json 格式
func NewProdDefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "json",
		Output: "stderr",
	}
}

// validate 填充默认值并校验
func (c *Config) validate() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = "stderr"
	}

	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("invalid format: %s, must be json or console", c.Format)
	}
	return nil
}
