// Package handlers exposes the HTTP surface: the redirect path, link
// management, and dashboard reports.
package handlers

import (
	"context"

	"github.com/grafheim/linklytics/internal/clientinfo"
)

type requestMetaKey struct{}

// RequestMeta carries per-request client attributes extracted by the
// middleware, so handlers never touch raw headers.
type RequestMeta struct {
	Client  clientinfo.Context
	Referer string
}

// ContextWithRequestMeta adds request metadata to the context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from the context.
// Missing metadata yields a zero value, never an error.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
