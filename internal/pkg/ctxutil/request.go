package ctxutil

import "context"

type requestInfoKey struct{}

// RequestInfo identifies the HTTP request a context belongs to.
type RequestInfo struct {
	RequestID string
	TraceID   string
}

func WithRequestInfo(ctx context.Context, info *RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func GetRequestInfo(ctx context.Context) *RequestInfo {
	if ctx == nil {
		return nil
	}
	if info, ok := ctx.Value(requestInfoKey{}).(*RequestInfo); ok {
		return info
	}
	return nil
}
