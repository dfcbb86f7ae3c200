package storage

import "github.com/ceyewan/portalgun/xerrors"

// 驱动类型
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config 存储配置
//
//	storage:
//	  driver: sqlite
//	  prefix: "portalgun:"
type Config struct {
	// Driver memory | sqlite | redis (默认: memory)
	Driver string `mapstructure:"driver"`

	// Prefix 键前缀，仅 redis 驱动使用
	Prefix string `mapstructure:"prefix"`

	// Capacity memory 驱动的最大条目数，0 表示不限
	Capacity int `mapstructure:"capacity"`
}

func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
}

func (c *Config) validate() error {
	c.setDefaults()
	switch c.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
	default:
		return xerrors.Wrapf(ErrUnknownDriver, "%q", c.Driver)
	}
	if c.Capacity < 0 {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "storage: capacity must not be negative")
	}
	return nil
}
