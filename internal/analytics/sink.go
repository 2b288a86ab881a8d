package analytics

import (
	"context"

	"go.uber.org/zap"
)

// Sink receives notification events off the bus. The authoritative click
// log is written synchronously by the engine; sinks are for downstream
// consumers (dashboards, log aggregation).
type Sink interface {
	HandleEntryCreated(ctx context.Context, event *EntryCreatedEvent) error
	HandleClick(ctx context.Context, event *ClickEvent) error
}

// LogSink logs every event it receives.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logging sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) HandleEntryCreated(_ context.Context, event *EntryCreatedEvent) error {
	s.logger.Info("url created",
		zap.String("shortKey", event.Key),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("createdAt", event.CreatedAt),
	)

	return nil
}

func (s *LogSink) HandleClick(_ context.Context, event *ClickEvent) error {
	s.logger.Info("url clicked",
		zap.String("shortKey", event.Key),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("clickedAt", event.ClickedAt),
		zap.String("browser", ParseBrowser(event.UserAgent)),
	)

	return nil
}
