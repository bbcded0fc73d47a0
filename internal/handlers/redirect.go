package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/grafheim/linklytics/internal/analytics"
	"github.com/grafheim/linklytics/internal/link"
	"go.uber.org/zap"
)

// RedirectRequest is the inbound short-code lookup.
type RedirectRequest struct {
	Code string `doc:"Link id or short code" example:"abc123" path:"code"`
}

// RedirectResponse redirects the visitor to the resolved target.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `header:"Location"`
	}
}

// RedirectHandler serves the redirect-and-ingest path. Resolution is the
// only thing the response waits on; click capture runs detached.
type RedirectHandler struct {
	resolver   *link.Resolver
	ingestor   *analytics.Ingestor
	defaultURL string
	logger     *zap.Logger
}

// NewRedirectHandler creates a redirect handler. defaultURL is where
// visitors land on a miss or a resolution failure.
func NewRedirectHandler(
	resolver *link.Resolver,
	ingestor *analytics.Ingestor,
	defaultURL string,
	logger *zap.Logger,
) *RedirectHandler {
	return &RedirectHandler{
		resolver:   resolver,
		ingestor:   ingestor,
		defaultURL: defaultURL,
		logger:     logger,
	}
}

// Redirect resolves the code and issues the redirect. Misses and storage
// failures both land on the default URL so the two are indistinguishable
// from outside; storage failures additionally log at error level (fail
// open, never a 5xx to the visitor). Successful resolutions record a click
// without delaying the response.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	resolved, err := h.resolver.Resolve(ctx, req.Code)
	if err != nil {
		if !errors.Is(err, link.ErrNotFound) {
			h.logger.Error("resolution failed, failing open to default",
				zap.String("code", req.Code),
				zap.Error(err),
			)
		}

		return redirectTo(h.defaultURL), nil
	}

	meta := RequestMetaFromContext(ctx)
	occurredAt := time.Now()

	// Detached on purpose: the visitor's redirect must not wait on, or
	// fail because of, click capture.
	go h.ingestor.Record(resolved.LinkID, occurredAt, meta.Client, meta.Referer)

	return redirectTo(resolved.TargetURL), nil
}

func redirectTo(url string) *RedirectResponse {
	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = url

	return resp
}
