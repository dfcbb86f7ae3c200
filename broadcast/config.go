package broadcast

import (
	"github.com/ceyewan/portalgun/serializer"
	"github.com/ceyewan/portalgun/xerrors"
)

// 驱动类型
const (
	DriverMemory = "memory"
	DriverNATS   = "nats"
	DriverRedis  = "redis"
)

// Config 广播配置
//
//	broadcast:
//	  driver: nats
//	  prefix: portalgun.storage
//	  serializer: msgpack
type Config struct {
	// Driver memory | nats | redis (默认: memory)
	Driver string `mapstructure:"driver"`

	// Prefix subject/channel 前缀 (默认: "portalgun.storage"，redis 驱动为 "portalgun:storage")
	Prefix string `mapstructure:"prefix"`

	// Serializer 信封编码 json | msgpack (默认: json)
	Serializer string `mapstructure:"serializer"`
}

func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMemory
	}
	if c.Prefix == "" {
		if c.Driver == DriverRedis {
			c.Prefix = "portalgun:storage"
		} else {
			c.Prefix = "portalgun.storage"
		}
	}
	if c.Serializer == "" {
		c.Serializer = serializer.TypeJSON
	}
}

func (c *Config) validate() error {
	c.setDefaults()
	switch c.Driver {
	case DriverMemory, DriverNATS, DriverRedis:
		return nil
	default:
		return xerrors.Wrapf(ErrUnknownDriver, "%q", c.Driver)
	}
}
