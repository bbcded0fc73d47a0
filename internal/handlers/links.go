package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grafheim/linklytics/internal/analytics"
	"github.com/grafheim/linklytics/internal/link"
	"go.uber.org/zap"
)

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	Body struct {
		TargetURL string     `doc:"Absolute URL to redirect to" example:"https://example.com/very/long/path" json:"targetUrl"`
		Alias     string     `doc:"Optional custom alias"       example:"promo"                              json:"alias,omitempty"     required:"false"`
		ExpiresAt *time.Time `doc:"Optional expiry timestamp"   json:"expiresAt,omitempty"                   required:"false"`
	}
}

// CreateLinkResponse is the response for a successfully created link.
type CreateLinkResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		ID        string     `doc:"Link id"             json:"id"`
		ShortCode string     `doc:"The short code"      json:"shortCode"`
		ShortURL  string     `doc:"The full short URL"  json:"shortUrl"`
		TargetURL string     `doc:"The destination URL" json:"targetUrl"`
		ExpiresAt *time.Time `doc:"Expiry, if any"      json:"expiresAt,omitempty"`
	}
}

// LinkStatsRequest asks for stats on one link.
type LinkStatsRequest struct {
	Code string `doc:"Link id or short code" example:"abc123" path:"code"`
}

// LinkStatsResponse reports a link and its accumulated click count.
type LinkStatsResponse struct {
	Body struct {
		ShortCode  string    `json:"shortCode"`
		TargetURL  string    `json:"targetUrl"`
		ClickCount int64     `json:"clickCount"`
		CreatedAt  time.Time `json:"createdAt"`
	}
}

// LinksHandler handles link creation and stats reads.
type LinksHandler struct {
	service *link.Service
	engine  *analytics.Engine
	baseURL string
	logger  *zap.Logger
}

// NewLinksHandler creates a links handler.
func NewLinksHandler(service *link.Service, engine *analytics.Engine, baseURL string, logger *zap.Logger) *LinksHandler {
	return &LinksHandler{
		service: service,
		engine:  engine,
		baseURL: baseURL,
		logger:  logger,
	}
}

// CreateLink stores a new link with a generated code or custom alias.
func (h *LinksHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	if err := validateTargetURL(req.Body.TargetURL); err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}

	l, err := h.service.Create(ctx, req.Body.TargetURL, req.Body.Alias, req.Body.ExpiresAt)
	if err != nil {
		if errors.Is(err, link.ErrAliasTaken) {
			return nil, huma.Error409Conflict("alias already taken")
		}

		h.logger.Error("failed to create link",
			zap.String("targetUrl", req.Body.TargetURL),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to create link")
	}

	shortURL := fmt.Sprintf("%s/%s", h.baseURL, l.ShortCode)

	resp := &CreateLinkResponse{}
	resp.Headers.Location = shortURL
	resp.Body.ID = l.ID
	resp.Body.ShortCode = l.ShortCode
	resp.Body.ShortURL = shortURL
	resp.Body.TargetURL = l.TargetURL
	resp.Body.ExpiresAt = l.ExpiresAt

	return resp, nil
}

// LinkStats returns the link and its click count. Expired links still
// report stats; only the redirect path hides them.
func (h *LinksHandler) LinkStats(ctx context.Context, req *LinkStatsRequest) (*LinkStatsResponse, error) {
	l, err := h.service.Get(ctx, req.Code)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		return nil, huma.Error500InternalServerError("failed to get link")
	}

	count, err := h.engine.ClickCount(ctx, l.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to count clicks")
	}

	resp := &LinkStatsResponse{}
	resp.Body.ShortCode = l.ShortCode
	resp.Body.TargetURL = l.TargetURL
	resp.Body.ClickCount = count
	resp.Body.CreatedAt = l.CreatedAt

	return resp, nil
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("targetUrl must be an absolute URL")
	}

	return nil
}
