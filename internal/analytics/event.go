// Package analytics captures click events off the redirect path and rolls
// them up into report-ready series.
package analytics

import (
	"context"
	"time"

	"github.com/grafheim/linklytics/internal/clientinfo"
)

// TopicLinkClicked carries one event per followed short link.
const TopicLinkClicked = "link.clicked"

// ClickEvent is one observed visit. Events are append-only: written once
// when a redirect resolves, never updated.
type ClickEvent struct {
	LinkID       string            `json:"linkId"`
	OccurredAt   time.Time         `json:"occurredAt"`
	ClientIP     string            `json:"clientIp"`
	UserAgentRaw string            `json:"userAgentRaw"`
	Browser      string            `json:"browser"`
	OS           string            `json:"os"`
	DeviceType   clientinfo.Device `json:"deviceType"`
	Referer      string            `json:"referer,omitempty"`
	Country      string            `json:"country,omitempty"`
	Region       string            `json:"region,omitempty"`
	City         string            `json:"city,omitempty"`
}

// Filter narrows a click listing. Zero values mean no constraint.
type Filter struct {
	LinkID string
	From   time.Time
	To     time.Time
}

// Store is the persistence contract for click events.
type Store interface {
	AppendClick(ctx context.Context, event *ClickEvent) error
	ListClicks(ctx context.Context, filter Filter) ([]ClickEvent, error)
}
