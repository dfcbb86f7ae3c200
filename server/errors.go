package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/portalgun/clog"
	"github.com/ceyewan/portalgun/xerrors"
)

var (
	// ErrNilStore 缺少收藏、删除或评论存储
	ErrNilStore = xerrors.Wrap(xerrors.ErrInvalidInput, "server: store is nil")

	// ErrNilDependency 缺少其他依赖
	ErrNilDependency = xerrors.Wrap(xerrors.ErrInvalidInput, "server: dependency is nil")
)

// errorBody 错误响应
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusFor(code string) int {
	switch code {
	case xerrors.CodeNotFound:
		return http.StatusNotFound
	case xerrors.CodeInvalidInput:
		return http.StatusBadRequest
	case xerrors.CodeUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// abort 按错误码写出 JSON 错误
func (s *Server) abort(c *gin.Context, err error) {
	code := xerrors.GetCode(err)
	if code == "" {
		code = xerrors.CodeInternal
	}
	status := statusFor(code)
	if errors.Is(err, context.Canceled) {
		status = 499
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed",
			clog.String("route", c.FullPath()), clog.ErrorWithCode(err, code))
	}
	c.AbortWithStatusJSON(status, errorBody{Code: code, Message: err.Error()})
}
