package shortener

import (
	"context"
	"time"
)

// Repository defines the storage operations the engine depends on.
// Implementations must serialize mutations so that concurrent Put and
// RecordClick calls never interleave their read and write phases.
type Repository interface {
	// Put inserts the entry unless one already exists for its key
	// (first-write-wins, silent no-op otherwise). Returns the key
	// either way. The write is durable before Put returns.
	Put(ctx context.Context, entry Entry) (Key, error)

	// Get returns the entry for a key, or ErrNotFound.
	Get(ctx context.Context, key Key) (*Entry, error)

	// ListEntries returns all entries in insertion order.
	ListEntries(ctx context.Context) ([]Entry, error)

	// RecordClick appends a click record unconditionally. The write is
	// durable before RecordClick returns.
	RecordClick(ctx context.Context, rec ClickRecord) error

	// ListClicks returns click records in append order. A nil predicate
	// selects everything.
	ListClicks(ctx context.Context, pred func(ClickRecord) bool) ([]ClickRecord, error)
}

// Engine orchestrates shortening and resolve-plus-record over a Repository.
type Engine struct {
	store Repository
}

// NewEngine creates a new shortener engine.
func NewEngine(store Repository) *Engine {
	return &Engine{store: store}
}

// Shorten derives the key for rawURL and inserts an entry if none exists,
// returning the stored entry. Idempotent: repeated calls with the same URL
// yield the same key and leave a single entry behind, with the original
// CreatedAt. Returns ErrInvalidURL for anything that is not an absolute
// http(s) URL.
func (e *Engine) Shorten(ctx context.Context, rawURL string) (*Entry, error) {
	if !ValidateURL(rawURL) {
		return nil, ErrInvalidURL
	}

	key := DeriveKey(rawURL)

	if _, err := e.store.Put(ctx, Entry{
		Key:         key,
		OriginalURL: rawURL,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	// Re-read so repeat calls surface the first insertion's CreatedAt.
	return e.store.Get(ctx, key)
}

// ResolveAndRecord looks up the entry for key and, when found, durably
// appends a click record before returning the entry and the record. The
// record carries a server-assigned timestamp. When the key is absent,
// ErrNotFound is returned and nothing is recorded. A failed click write
// fails the whole operation: the caller must not redirect without a
// recorded click.
func (e *Engine) ResolveAndRecord(ctx context.Context, key Key, meta ClickMeta) (*Entry, *ClickRecord, error) {
	entry, err := e.store.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	rec := ClickRecord{
		Key:         key,
		Timestamp:   time.Now().UTC(),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
		Referrer:    meta.Referrer,
		OriginalURL: entry.OriginalURL,
	}

	if err := e.store.RecordClick(ctx, rec); err != nil {
		return nil, nil, err
	}

	return entry, &rec, nil
}

// Exists reports whether rawURL has already been shortened, by scanning
// all entries for a matching original URL. O(n) in entry count.
func (e *Engine) Exists(ctx context.Context, rawURL string) (Key, bool, error) {
	entries, err := e.store.ListEntries(ctx)
	if err != nil {
		return "", false, err
	}

	for _, entry := range entries {
		if entry.OriginalURL == rawURL {
			return entry.Key, true, nil
		}
	}

	return "", false, nil
}
