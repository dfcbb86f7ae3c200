package comments

import (
	"fmt"

	"github.com/ceyewan/portalgun/xerrors"
)

var (
	// ErrInvalidComment 文本或作者长度不合法，具体字段见 *ValidationError
	ErrInvalidComment = xerrors.Wrap(xerrors.ErrInvalidInput, "comments: invalid comment")

	// ErrCommentNotFound 评论不存在
	ErrCommentNotFound = xerrors.Wrap(xerrors.ErrNotFound, "comments: comment not found")
)

// ValidationError 描述哪个字段不合法
type ValidationError struct {
	Field  string // text | author
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("comments: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidComment }
