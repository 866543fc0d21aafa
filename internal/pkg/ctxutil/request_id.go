package ctxutil

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// requestIDKeyType 使用私有类型避免与其他 context key 冲突
type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// WithRequestID 将请求 ID 注入到 context 中，由 RequestID 中间件调用
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID 从 context 中解析请求 ID
func GetRequestID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(requestIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// Logger 返回带 request_id 字段的 logger，context 中没有时返回全局 logger
func Logger(ctx context.Context) *zerolog.Logger {
	id, ok := GetRequestID(ctx)
	if !ok {
		return &log.Logger
	}
	l := log.Logger.With().Str("request_id", id).Logger()
	return &l
}
