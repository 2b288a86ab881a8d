package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all service routes. The redirect route is
// registered last so static paths take precedence over the key capture.
func RegisterRoutes(
	api huma.API,
	urls *URLHandler,
	documents *DocumentHandler,
	stats *AnalyticsHandler,
	health *HealthHandler,
) {
	huma.Register(api, huma.Operation{
		OperationID:   "shorten-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		DefaultStatus: http.StatusCreated,
		Summary:       "Create short URL",
		Description:   "Derives a deterministic short key for the URL and persists the mapping.",
		Tags:          []string{"URLs"},
	}, urls.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "process-html",
		Method:      http.MethodPost,
		Path:        "/process/html",
		Summary:     "Rewrite links in an HTML document",
		Description: "Replaces every absolute http(s) anchor with its shortened form, minting new mappings as needed.",
		Tags:        []string{"Documents"},
	}, documents.Process)

	huma.Register(api, huma.Operation{
		OperationID: "list-clicks",
		Method:      http.MethodGet,
		Path:        "/analytics",
		Summary:     "List click records",
		Description: "Lists click records, optionally filtered by short key and time range.",
		Tags:        []string{"Analytics"},
	}, stats.Clicks)

	huma.Register(api, huma.Operation{
		OperationID: "click-stats",
		Method:      http.MethodGet,
		Path:        "/analytics/{key}/stats",
		Summary:     "Aggregated click statistics",
		Description: "Total clicks, last-clicked time and browser breakdown for a short key.",
		Tags:        []string{"Analytics"},
	}, stats.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "tracked-urls",
		Method:      http.MethodGet,
		Path:        "/analytics/urls",
		Summary:     "List tracked URLs",
		Description: "Every known short key joined with its click count.",
		Tags:        []string{"Analytics"},
	}, stats.TrackedURLs)

	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, health.Check)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{key}",
		Summary:     "Redirect to original URL",
		Description: "Resolves the short key, records a click, and redirects to the original URL.",
		Tags:        []string{"URLs"},
	}, urls.Redirect)
}
