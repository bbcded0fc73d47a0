package middleware_test

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/grafheim/linklytics/internal/clientinfo"
	"github.com/grafheim/linklytics/internal/handlers"
	"github.com/grafheim/linklytics/internal/middleware"
	"github.com/grafheim/linklytics/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var errMultipartNotSupported = errors.New("multipart not supported in mock")

func newTestAPI() huma.API {
	return humachi.New(chi.NewMux(), huma.DefaultConfig("Test", "1.0.0"))
}

type mockLimiter struct {
	allowed bool
	err     error
	calls   int
	lastKey string
}

func (m *mockLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.calls++
	m.lastKey = key

	return m.allowed, m.err
}

// mockHumaContext implements huma.Context for testing.
type mockHumaContext struct {
	ctx        context.Context
	operation  *huma.Operation
	written    []byte
	statusCode int
}

func newMockHumaContext(op *huma.Operation, clientIP string) *mockHumaContext {
	meta := handlers.RequestMeta{
		Client: clientinfo.Context{IP: clientIP},
	}

	return &mockHumaContext{
		ctx:       handlers.ContextWithRequestMeta(context.Background(), meta),
		operation: op,
	}
}

func (m *mockHumaContext) Operation() *huma.Operation            { return m.operation }
func (m *mockHumaContext) Context() context.Context              { return m.ctx }
func (m *mockHumaContext) TLS() *tls.ConnectionState             { return nil }
func (m *mockHumaContext) Version() huma.ProtoVersion            { return huma.ProtoVersion{} }
func (m *mockHumaContext) Method() string                        { return "POST" }
func (m *mockHumaContext) Host() string                          { return "192.168.1.1:12345" }
func (m *mockHumaContext) RemoteAddr() string                    { return "192.168.1.1:12345" }
func (m *mockHumaContext) URL() url.URL                          { return url.URL{} }
func (m *mockHumaContext) Param(_ string) string                 { return "" }
func (m *mockHumaContext) Query(_ string) string                 { return "" }
func (m *mockHumaContext) Header(_ string) string                { return "" }
func (m *mockHumaContext) EachHeader(_ func(name, value string)) {}
func (m *mockHumaContext) BodyReader() io.Reader                 { return nil }
func (m *mockHumaContext) GetMultipartForm() (*multipart.Form, error) {
	return nil, errMultipartNotSupported
}
func (m *mockHumaContext) SetReadDeadline(_ time.Time) error { return nil }
func (m *mockHumaContext) SetStatus(code int)                { m.statusCode = code }
func (m *mockHumaContext) Status() int                       { return m.statusCode }
func (m *mockHumaContext) AppendHeader(_, _ string)          {}
func (m *mockHumaContext) SetHeader(_, _ string)             {}
func (m *mockHumaContext) BodyWriter() io.Writer             { return &mockBodyWriter{ctx: m} }

type mockBodyWriter struct {
	ctx *mockHumaContext
}

func (w *mockBodyWriter) Write(p []byte) (n int, err error) {
	w.ctx.written = append(w.ctx.written, p...)

	return len(p), nil
}

func markedOperation() *huma.Operation {
	return &huma.Operation{
		Path:     "/api/links",
		Metadata: map[string]any{ratelimit.MetadataKey: true},
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("allows marked operation when under the limit", func(t *testing.T) {
		limiter := &mockLimiter{allowed: true}
		mw := middleware.RateLimit(newTestAPI(), limiter, zap.NewNop())

		ctx := newMockHumaContext(markedOperation(), "203.0.113.5")

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.True(t, nextCalled)
		assert.Equal(t, 1, limiter.calls)
	})

	t.Run("returns 429 on a marked operation when denied", func(t *testing.T) {
		limiter := &mockLimiter{allowed: false}
		mw := middleware.RateLimit(newTestAPI(), limiter, zap.NewNop())

		ctx := newMockHumaContext(markedOperation(), "203.0.113.5")

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.False(t, nextCalled, "next should not run when rate limited")
		assert.Equal(t, 429, ctx.statusCode)
		assert.Contains(t, string(ctx.written), "rate limit")
	})

	t.Run("never consults the limiter on unmarked operations", func(t *testing.T) {
		// The redirect route carries no ratelimit metadata; even a limiter
		// that denies everything must not touch it.
		limiter := &mockLimiter{allowed: false}
		mw := middleware.RateLimit(newTestAPI(), limiter, zap.NewNop())

		ctx := newMockHumaContext(&huma.Operation{Path: "/{code}"}, "203.0.113.5")

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.True(t, nextCalled)
		assert.Zero(t, limiter.calls, "limiter should not be consulted")
		assert.Zero(t, ctx.statusCode)
	})

	t.Run("fails open when the limiter errors", func(t *testing.T) {
		limiter := &mockLimiter{err: errors.New("redis unreachable")}
		mw := middleware.RateLimit(newTestAPI(), limiter, zap.NewNop())

		ctx := newMockHumaContext(markedOperation(), "203.0.113.5")

		nextCalled := false

		mw(ctx, func(_ huma.Context) {
			nextCalled = true
		})

		assert.True(t, nextCalled, "limiter failure must not block the request")
		assert.Zero(t, ctx.statusCode)
	})

	t.Run("keys the window by client IP", func(t *testing.T) {
		limiter := &mockLimiter{allowed: true}
		mw := middleware.RateLimit(newTestAPI(), limiter, zap.NewNop())

		ctx := newMockHumaContext(markedOperation(), "198.51.100.7")

		mw(ctx, func(_ huma.Context) {})

		assert.Equal(t, "198.51.100.7", limiter.lastKey)
	})
}
