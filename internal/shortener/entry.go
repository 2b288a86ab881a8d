package shortener

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no entry exists for a short key.
var ErrNotFound = errors.New("url not found")

// ErrInvalidURL is returned when an input is not an absolute http(s) URL.
var ErrInvalidURL = errors.New("invalid url")

// Key is a short key derived from a URL.
type Key string

// Entry maps a short key to its original URL.
type Entry struct {
	Key         Key       `json:"shortKey"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClickRecord captures one redirect event. Records are append-only: the
// store never mutates or deletes them.
type ClickRecord struct {
	Key         Key       `json:"shortKey"`
	Timestamp   time.Time `json:"timestamp"`
	IPAddress   string    `json:"ipAddress,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	OriginalURL string    `json:"originalUrl"`
}

// ClickMeta holds the request metadata attached to a click. The timestamp
// is always assigned by the engine, never supplied by the caller.
type ClickMeta struct {
	IPAddress string
	UserAgent string
	Referrer  string
}
