package config

import "github.com/ceyewan/portalgun/xerrors"

// ErrValidationFailed 配置校验失败
var ErrValidationFailed = xerrors.Wrap(xerrors.ErrInvalidInput, "configuration validation failed")

// IsInvalidInput 判断是否为配置格式或校验错误
func IsInvalidInput(err error) bool {
	return xerrors.Is(err, xerrors.ErrInvalidInput)
}
