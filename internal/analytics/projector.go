package analytics

import (
	"context"
	"time"

	"github.com/shortkey/shortkey/internal/shortener"
)

// Source is the read side of the store the projector aggregates over.
type Source interface {
	ListEntries(ctx context.Context) ([]shortener.Entry, error)
	ListClicks(ctx context.Context, pred func(shortener.ClickRecord) bool) ([]shortener.ClickRecord, error)
}

// Filter selects click records. Zero-value fields impose no constraint;
// supplied fields intersect.
type Filter struct {
	Key   shortener.Key
	Start time.Time
	End   time.Time
}

// QueryResult is a count plus the matching records in append order.
type QueryResult struct {
	Count   int
	Results []shortener.ClickRecord
}

// Stats aggregates the clicks of a single short key.
type Stats struct {
	TotalClicks int
	LastClicked *time.Time
	Browsers    map[string]int
}

// TrackedURL pairs a short key with its click count. OriginalURL is empty
// for click records whose key has no entry.
type TrackedURL struct {
	Key         shortener.Key
	OriginalURL string
	ClickCount  int
}

// Projector computes read-only aggregations over the click log. It holds
// no state and caches nothing; every call re-reads the store.
type Projector struct {
	source Source
}

// NewProjector creates a projector over the given source.
func NewProjector(source Source) *Projector {
	return &Projector{source: source}
}

// Query returns the click records matching the filter.
func (p *Projector) Query(ctx context.Context, filter Filter) (*QueryResult, error) {
	results, err := p.source.ListClicks(ctx, func(rec shortener.ClickRecord) bool {
		if filter.Key != "" && rec.Key != filter.Key {
			return false
		}

		if !filter.Start.IsZero() && rec.Timestamp.Before(filter.Start) {
			return false
		}

		if !filter.End.IsZero() && rec.Timestamp.After(filter.End) {
			return false
		}

		return true
	})
	if err != nil {
		return nil, err
	}

	return &QueryResult{Count: len(results), Results: results}, nil
}

// ClickStats aggregates total clicks, last-clicked time and a browser
// breakdown for one short key. LastClicked is nil when the key has no
// clicks.
func (p *Projector) ClickStats(ctx context.Context, key shortener.Key) (*Stats, error) {
	clicks, err := p.source.ListClicks(ctx, func(rec shortener.ClickRecord) bool {
		return rec.Key == key
	})
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalClicks: len(clicks),
		Browsers:    make(map[string]int),
	}

	for _, rec := range clicks {
		stats.Browsers[ParseBrowser(rec.UserAgent)]++

		if stats.LastClicked == nil || rec.Timestamp.After(*stats.LastClicked) {
			ts := rec.Timestamp
			stats.LastClicked = &ts
		}
	}

	return stats, nil
}

// TrackedURLs outer-joins all entries with their click counts. Entries
// without clicks appear with count zero; clicks referencing an unknown
// key are counted under that key with an empty original URL.
func (p *Projector) TrackedURLs(ctx context.Context) ([]TrackedURL, error) {
	entries, err := p.source.ListEntries(ctx)
	if err != nil {
		return nil, err
	}

	clicks, err := p.source.ListClicks(ctx, nil)
	if err != nil {
		return nil, err
	}

	index := make(map[shortener.Key]int, len(entries))
	tracked := make([]TrackedURL, 0, len(entries))

	for _, entry := range entries {
		index[entry.Key] = len(tracked)
		tracked = append(tracked, TrackedURL{Key: entry.Key, OriginalURL: entry.OriginalURL})
	}

	for _, rec := range clicks {
		i, ok := index[rec.Key]
		if !ok {
			i = len(tracked)
			index[rec.Key] = i
			tracked = append(tracked, TrackedURL{Key: rec.Key})
		}

		tracked[i].ClickCount++
	}

	return tracked, nil
}
