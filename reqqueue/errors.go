package reqqueue

import "github.com/ceyewan/portalgun/xerrors"

var (
	// ErrInvalidConcurrency MaxConcurrent 小于 1
	ErrInvalidConcurrency = xerrors.Wrap(xerrors.ErrInvalidInput, "reqqueue: max concurrent must be at least 1")

	// ErrClosed 队列已关闭
	ErrClosed = xerrors.Wrap(xerrors.ErrUnavailable, "reqqueue: queue closed")

	// ErrTaskPanicked 任务 panic，已恢复
	ErrTaskPanicked = xerrors.New("reqqueue: task panicked")

	// ErrNilTask 任务为 nil
	ErrNilTask = xerrors.Wrap(xerrors.ErrInvalidInput, "reqqueue: nil task")
)
