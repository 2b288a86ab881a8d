package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortkey/shortkey/internal/analytics"
	"github.com/shortkey/shortkey/internal/messaging"
	"github.com/shortkey/shortkey/internal/shortener"
	"go.uber.org/zap"
)

// URLHandler handles shortening and redirect operations.
type URLHandler struct {
	engine         *shortener.Engine
	baseURL        string
	publishCreated messaging.Publish[analytics.EntryCreatedEvent]
	publishClick   messaging.Publish[analytics.ClickEvent]
	logger         *zap.Logger
}

// NewURLHandler creates a URL handler.
func NewURLHandler(
	engine *shortener.Engine,
	baseURL string,
	publishCreated messaging.Publish[analytics.EntryCreatedEvent],
	publishClick messaging.Publish[analytics.ClickEvent],
	logger *zap.Logger,
) *URLHandler {
	return &URLHandler{
		engine:         engine,
		baseURL:        baseURL,
		publishCreated: publishCreated,
		publishClick:   publishClick,
		logger:         logger,
	}
}

// Shorten derives and persists a short key for the submitted URL.
func (h *URLHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	entry, err := h.engine.Shorten(ctx, req.Body.URL)
	if err != nil {
		if errors.Is(err, shortener.ErrInvalidURL) {
			return nil, huma.Error400BadRequest("invalid url")
		}

		h.logger.Error("failed to shorten url", zap.String("url", req.Body.URL), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.EntryCreatedEvent{
		Key:         string(entry.Key),
		OriginalURL: entry.OriginalURL,
		CreatedAt:   entry.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishCreated(event); err != nil {
		h.logger.Error("failed to publish created event",
			zap.String("shortKey", event.Key),
			zap.Error(err),
		)
	}

	resp := &ShortenResponse{}
	resp.Body.ShortKey = string(entry.Key)
	resp.Body.ShortURL = fmt.Sprintf("%s/%s", h.baseURL, entry.Key)
	resp.Body.OriginalURL = entry.OriginalURL

	return resp, nil
}

// Redirect resolves a short key, records the click and redirects the
// caller. The click record is durable before the response is written; a
// failed record fails the redirect.
func (h *URLHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	entry, click, err := h.engine.ResolveAndRecord(ctx, shortener.Key(req.Key), shortener.ClickMeta{
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
	})
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("short url not found")
		}

		h.logger.Error("failed to resolve url", zap.String("shortKey", req.Key), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to resolve url")
	}

	event := &analytics.ClickEvent{
		Key:         string(entry.Key),
		OriginalURL: entry.OriginalURL,
		ClickedAt:   click.Timestamp,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
	}

	if err := h.publishClick(event); err != nil {
		h.logger.Error("failed to publish click event",
			zap.String("shortKey", event.Key),
			zap.Error(err),
		)
	}

	resp := &RedirectResponse{Status: http.StatusFound}
	resp.Headers.Location = entry.OriginalURL

	return resp, nil
}
