package connector

import "github.com/ceyewan/portalgun/xerrors"

// 连接器哨兵错误
var (
	ErrNotConnected = xerrors.Wrap(xerrors.ErrUnavailable, "connector: not connected")
	ErrConnection   = xerrors.Wrap(xerrors.ErrUnavailable, "connector: connection failed")
	ErrConfig       = xerrors.Wrap(xerrors.ErrInvalidInput, "connector: invalid config")
	ErrHealthCheck  = xerrors.Wrap(xerrors.ErrUnavailable, "connector: health check failed")
)
