package handlers

import (
	"time"

	"github.com/shortkey/shortkey/internal/shortener"
)

// ShortenRequest is the request body for shortening a URL.
type ShortenRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url"`
	}
}

// ShortenResponse is the response for a shortened URL.
type ShortenResponse struct {
	Body struct {
		ShortKey    string `doc:"The derived short key" example:"0caaf24a"                            json:"shortKey"`
		ShortURL    string `doc:"The full short URL"    example:"http://localhost:8888/0caaf24a"      json:"shortUrl"`
		OriginalURL string `doc:"The original URL"      example:"https://example.com/very/long/path" json:"originalUrl"`
	}
}

// RedirectRequest is the request for resolving a short key.
type RedirectRequest struct {
	Key string `doc:"The short key" example:"0caaf24a" path:"key"`
}

// RedirectResponse redirects the caller to the original URL.
type RedirectResponse struct {
	Status  int
	Headers struct {
		Location string `doc:"The original URL" header:"Location"`
	}
}

// ProcessRequest carries an HTML document whose links should be rewritten.
type ProcessRequest struct {
	Body struct {
		HTML string `doc:"Raw HTML content to process" json:"html"`
	}
}

// ProcessResponse returns the rewritten document as HTML.
type ProcessResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// ClicksRequest filters the click log. Absent parameters impose no
// constraint.
type ClicksRequest struct {
	Key   string    `doc:"Filter by short key"                 query:"shortKey" required:"false"`
	Start time.Time `doc:"Only clicks at or after this time"   query:"startDate" required:"false"`
	End   time.Time `doc:"Only clicks at or before this time"  query:"endDate"   required:"false"`
}

// ClicksResponse lists matching click records.
type ClicksResponse struct {
	Body struct {
		Count   int                     `doc:"Number of matching clicks" json:"count"`
		Results []shortener.ClickRecord `doc:"Matching click records"    json:"results"`
	}
}

// StatsRequest asks for aggregated stats of one short key.
type StatsRequest struct {
	Key string `doc:"The short key" example:"0caaf24a" path:"key"`
}

// StatsResponse is the aggregated click statistics for a short key.
type StatsResponse struct {
	Body struct {
		TotalClicks int            `doc:"Total recorded clicks"        json:"totalClicks"`
		LastClicked *time.Time     `doc:"Time of the most recent click" json:"lastClicked,omitempty"`
		Browsers    map[string]int `doc:"Clicks per detected browser"   json:"browsers"`
	}
}

// TrackedURL is one row of the tracked-URLs listing.
type TrackedURL struct {
	ShortKey    string `json:"shortKey"`
	OriginalURL string `json:"originalUrl,omitempty"`
	ClickCount  int    `json:"clickCount"`
}

// TrackedURLsResponse lists every known short key with its click count.
type TrackedURLsResponse struct {
	Body struct {
		URLs []TrackedURL `doc:"All tracked URLs" json:"urls"`
	}
}
