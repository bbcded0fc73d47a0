// Package middleware holds huma middleware for the HTTP surface.
package middleware

import (
	"net"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grafheim/linklytics/internal/clientinfo"
	"github.com/grafheim/linklytics/internal/handlers"
)

// DefaultIPHeaders is the forwarded-IP candidate order used when none is
// configured.
var DefaultIPHeaders = []string{"X-Forwarded-For", "X-Real-IP"}

// RequestMeta extracts the normalized client context once per request and
// stashes it in the context. ipHeaders is the forwarded-IP candidate list
// in descending priority order; the peer address is always the last
// resort.
func RequestMeta(ipHeaders []string) func(ctx huma.Context, next func(huma.Context)) {
	if len(ipHeaders) == 0 {
		ipHeaders = DefaultIPHeaders
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		candidates := make([]clientinfo.Header, 0, len(ipHeaders)+1)
		for _, name := range ipHeaders {
			candidates = append(candidates, clientinfo.Header{
				Name:  name,
				Value: ctx.Header(name),
			})
		}

		candidates = append(candidates, clientinfo.Header{
			Name:  "Host",
			Value: remoteHost(ctx.Host()),
		})

		meta := handlers.RequestMeta{
			Client:  clientinfo.Extract(ctx.Header("User-Agent"), candidates),
			Referer: ctx.Header("Referer"),
		}

		ctx = huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta))

		next(ctx)
	}
}

// remoteHost strips the port from a peer address. Bare hosts, including
// unbracketed IPv6, pass through unchanged.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
