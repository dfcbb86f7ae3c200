package storage

import "github.com/ceyewan/portalgun/xerrors"

var (
	// ErrUnknownDriver 不支持的驱动
	ErrUnknownDriver = xerrors.Wrap(xerrors.ErrInvalidInput, "storage: unknown driver")

	// ErrConnectorRequired sqlite/redis 驱动缺少连接器
	ErrConnectorRequired = xerrors.Wrap(xerrors.ErrInvalidInput, "storage: connector required")

	// ErrClosed 存储已关闭
	ErrClosed = xerrors.Wrap(xerrors.ErrUnavailable, "storage: closed")
)
