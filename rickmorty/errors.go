package rickmorty

import (
	"fmt"
	"strings"

	"github.com/ceyewan/portalgun/xerrors"
)

var (
	// ErrBadStatus 上游返回非 2xx
	ErrBadStatus = xerrors.Wrap(xerrors.ErrUnavailable, "rickmorty: unexpected status")

	// ErrGraphQL 响应中带有 errors 字段
	ErrGraphQL = xerrors.New("rickmorty: graphql error")

	// ErrCharacterNotFound 角色不存在
	ErrCharacterNotFound = xerrors.Wrap(xerrors.ErrNotFound, "rickmorty: character not found")

	// ErrCircuitOpen 熔断器打开，请求被直接拒绝
	ErrCircuitOpen = xerrors.Wrap(xerrors.ErrUnavailable, "rickmorty: circuit open")
)

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("rickmorty: status %d", e.StatusCode)
	}
	return fmt.Sprintf("rickmorty: status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrBadStatus }

// Retryable 429 与 5xx 可重试
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode < 600)
}

// GraphQLError GraphQL 层面的错误
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "rickmorty: graphql: " + strings.Join(e.Messages, "; ")
}

func (e *GraphQLError) Unwrap() error { return ErrGraphQL }
