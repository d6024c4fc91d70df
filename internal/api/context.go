package api

import (
	"context"
)

type ctxKey string

const ctxKeyRequest ctxKey = "request_context"

// RequestContext is what a guard learned about the caller.
type RequestContext struct {
	StoreID    int64
	StoreKey   string
	ExpireTime int64
	Code       string
	Host       string
	Subject    string
}

func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKeyRequest, rc)
}

// FromContext never returns nil; handlers outside a guard see a zero value.
func FromContext(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(ctxKeyRequest).(*RequestContext)
	if rc == nil {
		return &RequestContext{}
	}
	return rc
}
