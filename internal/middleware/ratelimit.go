package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grafheim/linklytics/internal/handlers"
	"github.com/grafheim/linklytics/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimit applies the limiter to operations marked with
// ratelimit.MetadataKey, keyed by client IP. Limiter failures fail open:
// a broken Redis must not take the API down with it.
func RateLimit(api huma.API, limiter ratelimit.Limiter, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if ctx.Operation().Metadata[ratelimit.MetadataKey] == nil {
			next(ctx)

			return
		}

		meta := handlers.RequestMetaFromContext(ctx.Context())

		allowed, err := limiter.Allow(ctx.Context(), meta.Client.IP)
		if err != nil {
			logger.Error("rate limit check failed, allowing request",
				zap.String("ip", meta.Client.IP),
				zap.Error(err),
			)

			next(ctx)

			return
		}

		if !allowed {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}
