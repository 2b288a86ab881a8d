package rewriter

import (
	"context"
	"errors"
	"fmt"

	"github.com/shortkey/shortkey/internal/shortener"
)

// Shortener mints short keys for the rewriter.
type Shortener interface {
	Shorten(ctx context.Context, rawURL string) (*shortener.Entry, error)
}

// Rewriter computes, for a document's hyperlink targets, the substitution
// mapping original target -> shortened replacement. Targets that are not
// absolute http(s) URLs are left untouched: they simply do not appear in
// the mapping. Already-shortened links passed back in are treated as new
// URLs and shortened again.
type Rewriter struct {
	engine  Shortener
	baseURL string
}

// New creates a rewriter that builds replacements under baseURL.
func New(engine Shortener, baseURL string) *Rewriter {
	return &Rewriter{engine: engine, baseURL: baseURL}
}

// Rewrite returns the replacement for every valid target, minting entries
// as needed. The only side effect is entry creation via the shortener.
func (r *Rewriter) Rewrite(ctx context.Context, targets []string) (map[string]string, error) {
	replacements := make(map[string]string, len(targets))

	for _, target := range targets {
		if _, done := replacements[target]; done {
			continue
		}

		if !shortener.ValidateURL(target) {
			continue
		}

		entry, err := r.engine.Shorten(ctx, target)
		if err != nil {
			if errors.Is(err, shortener.ErrInvalidURL) {
				continue
			}

			return nil, fmt.Errorf("shorten %s: %w", target, err)
		}

		replacements[target] = fmt.Sprintf("%s/%s", r.baseURL, entry.Key)
	}

	return replacements, nil
}
