package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shortkey/shortkey/internal/rewriter"
	"go.uber.org/zap"
)

// DocumentHandler rewrites hyperlinks inside submitted HTML documents.
type DocumentHandler struct {
	rewriter *rewriter.Rewriter
	logger   *zap.Logger
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(rw *rewriter.Rewriter, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{rewriter: rw, logger: logger}
}

// Process rewrites every valid absolute http(s) anchor in the document to
// its shortened form, minting entries as needed, and returns the
// re-serialized HTML.
func (h *DocumentHandler) Process(ctx context.Context, req *ProcessRequest) (*ProcessResponse, error) {
	if req.Body.HTML == "" {
		return nil, huma.Error400BadRequest("html content required")
	}

	processed, err := h.rewriter.ProcessDocument(ctx, req.Body.HTML)
	if err != nil {
		h.logger.Error("failed to process document", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to process document")
	}

	return &ProcessResponse{
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(processed),
	}, nil
}
