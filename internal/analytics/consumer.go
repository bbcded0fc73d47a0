package analytics

import (
	"context"
	"fmt"

	"github.com/grafheim/linklytics/internal/geo"
)

// NewClickHandler returns the consume-side handler for click events: it
// geo-enriches the event and appends it to the store. Geo lookup is best
// effort and never fails the append; a store failure nacks the message so
// the transport can redeliver.
func NewClickHandler(store Store, locator geo.Locator) func(ctx context.Context, event *ClickEvent) error {
	return func(ctx context.Context, event *ClickEvent) error {
		loc := locator.Locate(event.ClientIP)
		event.Country = loc.Country
		event.Region = loc.Region
		event.City = loc.City

		if err := store.AppendClick(ctx, event); err != nil {
			return fmt.Errorf("append click for link %s: %w", event.LinkID, err)
		}

		return nil
	}
}
