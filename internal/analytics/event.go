package analytics

import "time"

const (
	// TopicEntryCreated carries EntryCreatedEvent messages.
	TopicEntryCreated = "url.created"
	// TopicClick carries ClickEvent messages.
	TopicClick = "url.clicked"
)

// EntryCreatedEvent is emitted when a URL is shortened. It is a
// notification only: the durable entry write has already happened when
// this event is published.
type EntryCreatedEvent struct {
	Key         string    `json:"shortKey"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}

// ClickEvent is emitted after a click record has been durably appended.
type ClickEvent struct {
	Key         string    `json:"shortKey"`
	OriginalURL string    `json:"originalUrl"`
	ClickedAt   time.Time `json:"clickedAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
}
