package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shortkey/shortkey/internal/analytics"
	"github.com/shortkey/shortkey/internal/shortener"
	"github.com/shortkey/shortkey/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(t *testing.T) *store.Store {
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
		{Key: "aaaa0000", Timestamp: base.Add(2 * time.Hour), UserAgent: "Chrome/92.0", OriginalURL: "https://a.example.com"},
		{Key: "aaaa0000", Timestamp: base.Add(3 * time.Hour), UserAgent: "Firefox/89.0", OriginalURL: "https://a.example.com"},
		{Key: "orphan00", Timestamp: base.Add(4 * time.Hour), UserAgent: "curl/7.68.0", OriginalURL: "https://gone.example.com"},
	}

	for _, rec := range clicks {
		require.NoError(t, s.RecordClick(context.Background(), rec))
	}

	return s
}

func TestProjector_Query(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no filters returns everything", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		result, err := p.Query(context.Background(), analytics.Filter{})

		require.NoError(t, err)
		assert.Equal(t, 4, result.Count)
		assert.Len(t, result.Results, 4)
	})

	t.Run("filters by key", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		result, err := p.Query(context.Background(), analytics.Filter{Key: "aaaa0000"})

		require.NoError(t, err)
		assert.Equal(t, 3, result.Count)
	})

	t.Run("intersects key and time range", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		result, err := p.Query(context.Background(), analytics.Filter{
			Key:   "aaaa0000",
			Start: base.Add(90 * time.Minute),
			End:   base.Add(150 * time.Minute),
		})

		require.NoError(t, err)
		require.Equal(t, 1, result.Count)
		assert.Equal(t, "Chrome/92.0", result.Results[0].UserAgent)
	})

	t.Run("range bounds are inclusive", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		result, err := p.Query(context.Background(), analytics.Filter{
			Start: base.Add(1 * time.Hour),
			End:   base.Add(4 * time.Hour),
		})

		require.NoError(t, err)
		assert.Equal(t, 4, result.Count)
	})
}

func TestProjector_ClickStats(t *testing.T) {
	t.Run("aggregates totals, last click and browsers", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		stats, err := p.ClickStats(context.Background(), "aaaa0000")

		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalClicks)
		assert.Equal(t, map[string]int{"Chrome": 2, "Firefox": 1}, stats.Browsers)

		require.NotNil(t, stats.LastClicked)
		expected := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
		assert.True(t, stats.LastClicked.Equal(expected))
	})

	t.Run("no clicks yields zero stats and no last click", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		stats, err := p.ClickStats(context.Background(), "bbbb0000")

		require.NoError(t, err)
		assert.Zero(t, stats.TotalClicks)
		assert.Nil(t, stats.LastClicked)
		assert.Empty(t, stats.Browsers)
	})
}

func TestProjector_TrackedURLs(t *testing.T) {
	t.Run("outer-joins entries with click counts", func(t *testing.T) {
		p := analytics.NewProjector(seedStore(t))

		tracked, err := p.TrackedURLs(context.Background())

		require.NoError(t, err)
		require.Len(t, tracked, 3)

		byKey := make(map[shortener.Key]analytics.TrackedURL, len(tracked))
		for _, tu := range tracked {
			byKey[tu.Key] = tu
		}

		assert.Equal(t, 3, byKey["aaaa0000"].ClickCount)
		assert.Equal(t, "https://a.example.com", byKey["aaaa0000"].OriginalURL)

		// Entry without clicks still appears.
		assert.Equal(t, 0, byKey["bbbb0000"].ClickCount)

		// Clicks with no matching entry are counted without a URL.
		assert.Equal(t, 1, byKey["orphan00"].ClickCount)
		assert.Empty(t, byKey["orphan00"].OriginalURL)
	})
}
