package persist

import (
	"errors"

	"github.com/ceyewan/portalgun/xerrors"
)

var (
	// ErrNilStorage 未提供存储
	ErrNilStorage = xerrors.Wrap(xerrors.ErrInvalidInput, "persist: nil storage")

	// ErrNilCodec 未提供编解码器
	ErrNilCodec = xerrors.Wrap(xerrors.ErrInvalidInput, "persist: nil codec")

	// ErrEmptyKey 存储键为空
	ErrEmptyKey = xerrors.Wrap(xerrors.ErrInvalidInput, "persist: empty key")

	// ErrUnchanged 由 Update 的 op 返回，表示无需变更；Update 不写入也不广播，返回 nil
	ErrUnchanged = errors.New("persist: unchanged")
)
