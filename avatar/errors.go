package avatar

import (
	"fmt"

	"github.com/ceyewan/portalgun/xerrors"
)

var (
	// ErrNilQueue 未注入请求队列
	ErrNilQueue = xerrors.Wrap(xerrors.ErrInvalidInput, "avatar: queue is nil")

	// ErrEmptyURL 图片地址为空
	ErrEmptyURL = xerrors.Wrap(xerrors.ErrInvalidInput, "avatar: empty url")

	// ErrBadStatus 图片请求返回非 2xx
	ErrBadStatus = xerrors.Wrap(xerrors.ErrUnavailable, "avatar: failed to load image")

	// ErrTooLarge 图片超过 WithMaxSize 上限
	ErrTooLarge = xerrors.Wrap(xerrors.ErrUnavailable, "avatar: image too large")
)

// StatusError 图片请求返回非 2xx
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("avatar: %s: status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }
