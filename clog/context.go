package clog

import (
	"context"
	"log/slog"
)

type contextKey string

// 标准 Context 键，配合 WithStandardContext 使用
const (
	RequestIDKey contextKey = "request_id"
	OriginKey    contextKey = "origin"
)

// WithRequestID 在 ctx 中写入 request_id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// extractContextFields 按规则把 ctx 中的值追加到 attrs
func extractContextFields(ctx context.Context, rules []ContextField, attrs []slog.Attr) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	for _, cf := range rules {
		if v := ctx.Value(cf.Key); v != nil {
			attrs = append(attrs, slog.Any(cf.FieldName, v))
		}
	}
	return attrs
}
