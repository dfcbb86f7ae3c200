package storage

import (
	"github.com/ceyewan/portalgun/clog"
)

// New 按 cfg.Driver 创建存储。sqlite 与 redis 驱动需要通过 WithSQLite / WithRedis 提供已连接的连接器。
// 返回的 Storage 自带操作指标。
func New(cfg *Config, opts ...Option) (Storage, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	var (
		st  Storage
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		if o.sqlite == nil {
			return nil, ErrConnectorRequired
		}
		st, err = newSQLite(o.sqlite)
	case DriverRedis:
		if o.redis == nil {
			return nil, ErrConnectorRequired
		}
		st = newRedis(o.redis, cfg.Prefix)
	default:
		st, err = newMemory(cfg.Capacity)
	}
	if err != nil {
		return nil, err
	}

	o.logger.Info("storage ready", clog.String("driver", cfg.Driver))
	return instrument(st, cfg.Driver, o.meter, o.logger)
}
