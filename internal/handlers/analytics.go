package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortkey/shortkey/internal/analytics"
	"github.com/shortkey/shortkey/internal/shortener"
	"go.uber.org/zap"
)

// EntryGetter looks up a single entry by key.
type EntryGetter interface {
	Get(ctx context.Context, key shortener.Key) (*shortener.Entry, error)
}

// AnalyticsHandler serves read-only projections over the click log.
type AnalyticsHandler struct {
	projector *analytics.Projector
	entries   EntryGetter
	logger    *zap.Logger
}

// NewAnalyticsHandler creates an analytics handler.
func NewAnalyticsHandler(projector *analytics.Projector, entries EntryGetter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{projector: projector, entries: entries, logger: logger}
}

// Clicks lists click records matching the supplied filters.
func (h *AnalyticsHandler) Clicks(ctx context.Context, req *ClicksRequest) (*ClicksResponse, error) {
	result, err := h.projector.Query(ctx, analytics.Filter{
		Key:   shortener.Key(req.Key),
		Start: req.Start,
		End:   req.End,
	})
	if err != nil {
		h.logger.Error("failed to query clicks", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to query clicks")
	}

	resp := &ClicksResponse{}
	resp.Body.Count = result.Count
	resp.Body.Results = result.Results

	return resp, nil
}

// Stats returns aggregated click statistics for one short key. Unknown
// keys yield a 404 so callers can tell "never shortened" from "never
// clicked".
func (h *AnalyticsHandler) Stats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	if _, err := h.entries.Get(ctx, shortener.Key(req.Key)); err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to look up entry", zap.String("shortKey", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to compute stats")
	}

	stats, err := h.projector.ClickStats(ctx, shortener.Key(req.Key))
	if err != nil {
		h.logger.Error("failed to compute stats", zap.String("shortKey", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to compute stats")
	}

	resp := &StatsResponse{}
	resp.Body.TotalClicks = stats.TotalClicks
	resp.Body.LastClicked = stats.LastClicked
	resp.Body.Browsers = stats.Browsers

	return resp, nil
}

// TrackedURLs lists every known short key with its click count.
func (h *AnalyticsHandler) TrackedURLs(ctx context.Context, _ *struct{}) (*TrackedURLsResponse, error) {
	tracked, err := h.projector.TrackedURLs(ctx)
	if err != nil {
		h.logger.Error("failed to list tracked urls", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list tracked urls")
	}

	resp := &TrackedURLsResponse{}
	resp.Body.URLs = make([]TrackedURL, 0, len(tracked))

	for _, t := range tracked {
		resp.Body.URLs = append(resp.Body.URLs, TrackedURL{
			ShortKey:    string(t.Key),
			OriginalURL: t.OriginalURL,
			ClickCount:  t.ClickCount,
		})
	}

	return resp, nil
}
