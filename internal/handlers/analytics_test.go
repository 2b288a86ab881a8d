package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shortkey/shortkey/internal/analytics"
	"github.com/shortkey/shortkey/internal/handlers"
	"github.com/shortkey/shortkey/internal/shortener"
	"github.com/shortkey/shortkey/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedAnalyticsStore(t *testing.T) *store.Store {
	t.Helper()

	s := store.New(store.NewMemoryKV())

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := s.Put(context.Background(), shortener.Entry{
		Key:         "aaaa0000",
		OriginalURL: "https://a.example.com",
		CreatedAt:   base,
	})
	require.NoError(t, err)

	_, err = s.Put(context.Background(), shortener.Entry{
		Key:         "bbbb0000",
		OriginalURL: "https://b.example.com",
		CreatedAt:   base,
	})
	require.NoError(t, err)

	clicks := []shortener.ClickRecord{
		{Key: "aaaa0000", Timestamp: base.Add(1 * time.Hour), UserAgent: "Chrome/91.0", OriginalURL: "https://a.example.com"},
		{Key: "aaaa0000", Timestamp: base.Add(2 * time.Hour), UserAgent: "Firefox/89.0", OriginalURL: "https://a.example.com"},
	}

	for _, rec := range clicks {
		require.NoError(t, s.RecordClick(context.Background(), rec))
	}

	return s
}

func newAnalyticsHandler(s *store.Store) *handlers.AnalyticsHandler {
	return handlers.NewAnalyticsHandler(analytics.NewProjector(s), s, zap.NewNop())
}

func TestAnalyticsHandler_Clicks(t *testing.T) {
	t.Run("no filters returns every click", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		resp, err := handler.Clicks(context.Background(), &handlers.ClicksRequest{})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Body.Count)
		assert.Len(t, resp.Body.Results, 2)
	})

	t.Run("filters by key and time range", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		resp, err := handler.Clicks(context.Background(), &handlers.ClicksRequest{
			Key:   "aaaa0000",
			Start: base.Add(90 * time.Minute),
			End:   base.Add(3 * time.Hour),
		})

		require.NoError(t, err)
		require.Equal(t, 1, resp.Body.Count)
		assert.Equal(t, "Firefox/89.0", resp.Body.Results[0].UserAgent)
	})

	t.Run("unknown key matches nothing", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		resp, err := handler.Clicks(context.Background(), &handlers.ClicksRequest{Key: "deadbeef"})

		require.NoError(t, err)
		assert.Zero(t, resp.Body.Count)
	})
}

func TestAnalyticsHandler_Stats(t *testing.T) {
	t.Run("aggregates clicks for a known key", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		resp, err := handler.Stats(context.Background(), &handlers.StatsRequest{Key: "aaaa0000"})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.Body.TotalClicks)
		assert.Equal(t, map[string]int{"Chrome": 1, "Firefox": 1}, resp.Body.Browsers)
		require.NotNil(t, resp.Body.LastClicked)
	})

	t.Run("known key without clicks yields zero stats", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		resp, err := handler.Stats(context.Background(), &handlers.StatsRequest{Key: "bbbb0000"})

		require.NoError(t, err)
		assert.Zero(t, resp.Body.TotalClicks)
		assert.Nil(t, resp.Body.LastClicked)
	})

	t.Run("unknown key yields 404", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		_, err := handler.Stats(context.Background(), &handlers.StatsRequest{Key: "deadbeef"})

		assertStatusError(t, err, http.StatusNotFound)
	})
}

func TestAnalyticsHandler_TrackedURLs(t *testing.T) {
	t.Run("lists every key with its click count", func(t *testing.T) {
		handler := newAnalyticsHandler(seedAnalyticsStore(t))

		resp, err := handler.TrackedURLs(context.Background(), nil)

		require.NoError(t, err)
		require.Len(t, resp.Body.URLs, 2)

		byKey := make(map[string]handlers.TrackedURL, len(resp.Body.URLs))
		for _, u := range resp.Body.URLs {
			byKey[u.ShortKey] = u
		}

		assert.Equal(t, 2, byKey["aaaa0000"].ClickCount)
		assert.Equal(t, "https://a.example.com", byKey["aaaa0000"].OriginalURL)
		assert.Equal(t, 0, byKey["bbbb0000"].ClickCount)
	})
}
