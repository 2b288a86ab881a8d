package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/shortkey/shortkey/internal/shortener"
)

const (
	entriesKey = "url_entries"
	clicksKey  = "analytics_entries"
)

// Store persists URL entries and the click log as JSON collections in a
// KV substrate. Every mutation is a full read-modify-write of its
// collection, so a single mutex serializes all operations; two mutations
// can otherwise read the same snapshot and the second write would clobber
// the first's addition.
//
// Keys are 32-bit truncated hashes, so two distinct URLs can collide.
// Put is first-write-wins: the colliding URL is never stored and its key
// keeps resolving to the earlier URL. This matches the derivation
// contract and is deliberately not corrected here.
type Store struct {
	mu sync.Mutex
	kv KV
}

// New creates a Store over the given KV substrate.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Put inserts the entry unless its key is already present. Returns the
// key either way; the updated collection is durable before Put returns.
func (s *Store) Put(ctx context.Context, entry shortener.Entry) (shortener.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return "", err
	}

	for _, existing := range entries {
		if existing.Key == entry.Key {
			return entry.Key, nil
		}
	}

	entries = append(entries, entry)

	if err := s.save(ctx, entriesKey, entries); err != nil {
		return "", err
	}

	return entry.Key, nil
}

// Get returns the entry for key, or shortener.ErrNotFound.
func (s *Store) Get(ctx context.Context, key shortener.Key) (*shortener.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Key == key {
			return &entries[i], nil
		}
	}

	return nil, shortener.ErrNotFound
}

// ListEntries returns all entries in insertion order.
func (s *Store) ListEntries(ctx context.Context) ([]shortener.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadEntries(ctx)
}

// RecordClick appends rec to the click log. No dedup and no existence
// check against the entries collection; the log is append-only.
func (s *Store) RecordClick(ctx context.Context, rec shortener.ClickRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clicks, err := s.loadClicks(ctx)
	if err != nil {
		return err
	}

	clicks = append(clicks, rec)

	return s.save(ctx, clicksKey, clicks)
}

// ListClicks returns click records in append order. A nil predicate
// selects everything.
func (s *Store) ListClicks(ctx context.Context, pred func(shortener.ClickRecord) bool) ([]shortener.ClickRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clicks, err := s.loadClicks(ctx)
	if err != nil {
		return nil, err
	}

	if pred == nil {
		return clicks, nil
	}

	filtered := make([]shortener.ClickRecord, 0, len(clicks))

	for _, rec := range clicks {
		if pred(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered, nil
}

func (s *Store) loadEntries(ctx context.Context) ([]shortener.Entry, error) {
	var entries []shortener.Entry
	if err := s.load(ctx, entriesKey, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *Store) loadClicks(ctx context.Context) ([]shortener.ClickRecord, error) {
	var clicks []shortener.ClickRecord
	if err := s.load(ctx, clicksKey, &clicks); err != nil {
		return nil, err
	}

	return clicks, nil
}

// load deserializes a collection; an absent collection is an empty one.
func (s *Store) load(ctx context.Context, key string, out any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read collection %s: %w", key, err)
	}

	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode collection %s: %w", key, err)
	}

	return nil
}

func (s *Store) save(ctx context.Context, key string, collection any) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}

	if err := s.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}

	return nil
}

// Compile-time check.
var _ shortener.Repository = (*Store)(nil)
