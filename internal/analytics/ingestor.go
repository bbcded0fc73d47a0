package analytics

import (
	"time"

	"github.com/grafheim/linklytics/internal/clientinfo"
	"github.com/grafheim/linklytics/internal/messaging"
	"go.uber.org/zap"
)

// Ingestor records click events for resolved redirects. Recording is best
// effort: every failure is logged and swallowed so the redirect response is
// never coupled to tracking.
type Ingestor struct {
	publish messaging.Publish[ClickEvent]
	logger  *zap.Logger
}

// NewIngestor creates an ingestor that publishes events to the click topic.
func NewIngestor(publish messaging.Publish[ClickEvent], logger *zap.Logger) *Ingestor {
	return &Ingestor{
		publish: publish,
		logger:  logger,
	}
}

// Record builds and publishes one click event. Callers invoke it after the
// redirect decision, typically in a detached goroutine; it never returns an
// error and never panics into the request path.
func (i *Ingestor) Record(linkID string, occurredAt time.Time, info clientinfo.Context, referer string) {
	event := &ClickEvent{
		LinkID:       linkID,
		OccurredAt:   occurredAt,
		ClientIP:     info.IP,
		UserAgentRaw: info.RawUserAgent,
		Browser:      info.Browser,
		OS:           info.OS,
		DeviceType:   info.Device,
		Referer:      referer,
	}

	if err := i.publish(event); err != nil {
		i.logger.Error("failed to record click",
			zap.String("linkId", linkID),
			zap.Time("occurredAt", occurredAt),
			zap.String("stage", "publish"),
			zap.Error(err),
		)
	}
}
