package constant

import (
	"context"
)

type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
)

// SetRequestID устанавливает request_id в context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// GetRequestID извлекает request_id из context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDContextKey).(string)
	return requestID, ok
}
