package reqqueue

import (
	"time"

	"github.com/ceyewan/portalgun/xerrors"
)

// DefaultMaxConcurrent 默认并发上限
const DefaultMaxConcurrent = 3

// Config 队列配置
//
//	queue:
//	  max_concurrent: 3
//	  task_timeout: 0s   # 0 表示不限时
type Config struct {
	// MaxConcurrent 同时运行的任务上限，必须 >= 1
	MaxConcurrent int `mapstructure:"max_concurrent"`

	// TaskTimeout 单个任务的执行时限。超时后任务的 ctx 被取消，
	// 任务返回后才释放并发槽位。0 表示不设置。
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{MaxConcurrent: DefaultMaxConcurrent}
}

func (c *Config) validate() error {
	if c.MaxConcurrent < 1 {
		return xerrors.Wrapf(ErrInvalidConcurrency, "got %d", c.MaxConcurrent)
	}
	if c.TaskTimeout < 0 {
		return xerrors.Wrapf(xerrors.ErrInvalidInput, "task timeout must not be negative, got %s", c.TaskTimeout)
	}
	return nil
}
