package explorer

import "github.com/ceyewan/portalgun/xerrors"

var (
	// ErrNilStore 缺少收藏或删除集合
	ErrNilStore = xerrors.Wrap(xerrors.ErrInvalidInput, "explorer: store is nil")

	// ErrNilSource 缺少上游数据源
	ErrNilSource = xerrors.Wrap(xerrors.ErrInvalidInput, "explorer: source is nil")
)
