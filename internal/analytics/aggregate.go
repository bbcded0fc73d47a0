package analytics

import (
	"context"
	"fmt"
	"time"
)

// Bucket is one calendar period in a report series. Buckets are derived
// views: safe to discard and recompute from the event set at any time.
type Bucket struct {
	Period string `json:"period"`
	Count  int64  `json:"count"`
}

var monthLabels = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Engine folds stored click events into report series. Every call is a
// full recomputation over the event set, so results are a pure function of
// the events: same events in, bit-identical buckets out.
type Engine struct {
	store Store
}

// NewEngine creates an aggregation engine over the given click store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// MonthlySeries groups clicks by month-of-year, ignoring the year, into a
// dense Jan..Dec series. Months without events appear with count zero.
// Events with a zero timestamp are excluded rather than aborting the pass.
func (e *Engine) MonthlySeries(ctx context.Context, filter Filter) ([]Bucket, error) {
	events, err := e.store.ListClicks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list clicks: %w", err)
	}

	var counts [12]int64

	for _, event := range events {
		if event.OccurredAt.IsZero() {
			continue
		}

		counts[event.OccurredAt.Month()-time.January]++
	}

	buckets := make([]Bucket, len(monthLabels))
	for i, label := range monthLabels {
		buckets[i] = Bucket{Period: label, Count: counts[i]}
	}

	return buckets, nil
}

// TotalClicks counts every stored click matching the filter, one unit per
// event. The dashboard labels this "revenue", but there is no amount field
// anywhere: a click is worth exactly one.
func (e *Engine) TotalClicks(ctx context.Context, filter Filter) (int64, error) {
	events, err := e.store.ListClicks(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("list clicks: %w", err)
	}

	return int64(len(events)), nil
}

// ClickCount counts clicks for a single link.
func (e *Engine) ClickCount(ctx context.Context, linkID string) (int64, error) {
	return e.TotalClicks(ctx, Filter{LinkID: linkID})
}
