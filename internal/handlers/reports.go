package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grafheim/linklytics/internal/analytics"
)

// MonthlyReportResponse is the 12-bucket Jan..Dec series the dashboard
// graph renders.
type MonthlyReportResponse struct {
	Body struct {
		Series []analytics.Bucket `json:"series"`
	}
}

// TotalsReportResponse carries the dashboard counters. Both values count
// clicks with weight one; the two names survive from the generic revenue
// report the dashboard started as.
type TotalsReportResponse struct {
	Body struct {
		TotalRevenue int64 `json:"totalRevenue"`
		SalesCount   int64 `json:"salesCount"`
	}
}

// ReportsHandler serves aggregated click series to the dashboard.
type ReportsHandler struct {
	engine *analytics.Engine
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(engine *analytics.Engine) *ReportsHandler {
	return &ReportsHandler{engine: engine}
}

// Monthly returns the dense monthly click series.
func (h *ReportsHandler) Monthly(ctx context.Context, _ *struct{}) (*MonthlyReportResponse, error) {
	series, err := h.engine.MonthlySeries(ctx, analytics.Filter{})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to aggregate monthly series")
	}

	resp := &MonthlyReportResponse{}
	resp.Body.Series = series

	return resp, nil
}

// Totals returns the running click counters.
func (h *ReportsHandler) Totals(ctx context.Context, _ *struct{}) (*TotalsReportResponse, error) {
	total, err := h.engine.TotalClicks(ctx, analytics.Filter{})
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to count clicks")
	}

	resp := &TotalsReportResponse{}
	resp.Body.TotalRevenue = total
	resp.Body.SalesCount = total

	return resp, nil
}
