package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/grafheim/linklytics/internal/ratelimit"
)

// RegisterRoutes registers the redirect, link management, and report routes.
// Only link creation is rate limited; the redirect path never is.
func RegisterRoutes(api huma.API, redirects *RedirectHandler, links *LinksHandler, reports *ReportsHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodPost,
		Path:        "/api/links",
		Summary:     "Create short link",
		Description: "Creates a shortened link with a generated code or a custom alias.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: true,
		},
	}, links.CreateLink)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/api/links/{code}/stats",
		Summary: "Link statistics",
		Tags:    []string{"Links"},
	}, links.LinkStats)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/api/reports/monthly",
		Summary: "Monthly click series",
		Tags:    []string{"Reports"},
	}, reports.Monthly)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/api/reports/totals",
		Summary: "Total click counters",
		Tags:    []string{"Reports"},
	}, reports.Totals)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to target URL",
		Description: "Resolves the short code and redirects. Unknown and expired codes redirect to the default location.",
		Tags:        []string{"Links"},
	}, redirects.Redirect)
}
