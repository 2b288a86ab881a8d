package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// KeyLength is the number of hex characters in a short key.
const KeyLength = 8

// DeriveKey maps a URL string to its short key: the first 8 hex characters
// of the SHA-256 digest of the raw bytes. The same input always yields the
// same key. No normalization is applied; callers that want equivalent URLs
// to share a key should run SanitizeURL first.
func DeriveKey(rawURL string) Key {
	sum := sha256.Sum256([]byte(rawURL))

	return Key(hex.EncodeToString(sum[:])[:KeyLength])
}

// ValidateURL reports whether raw is an absolute URL with an http or https
// scheme. Relative paths, mailto:, javascript: and malformed strings all
// fail validation.
func ValidateURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// SanitizeURL strips the fragment and any trailing slashes from a URL.
// It is an optional pre-step for callers that want trivially-different
// spellings of a URL to derive the same key.
func SanitizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}

	u.Fragment = ""

	return strings.TrimRight(u.String(), "/"), nil
}
