package domain

import "time"

// ContentKind distinguishes article-like and video-like items.
type ContentKind string

const (
	KindArticle ContentKind = "article"
	KindVideo   ContentKind = "video"
)

// ContentItem is a single article or video ingested from a source.
// Identity is (SourceID, NaturalKey); the numeric ID is assigned by storage.
// Immutable after ingestion except for late-arriving FullText.
type ContentItem struct {
	ID          int64
	SourceID    string
	NaturalKey  string
	Title       string
	URL         string
	Body        string
	FullText    string
	Kind        ContentKind
	PublishedAt time.Time
	ScrapedAt   time.Time
}

// Summary is the generated digest of one content item, created exactly once.
// CreatedAt carries the item's publication time, not generation time, so
// window filters downstream reflect editorial recency.
type Summary struct {
	ContentItemID int64
	ShortTitle    string
	Synopsis      string
	CreatedAt     time.Time
}

// SummarizedItem joins a content item with its summary for ranking and rendering.
type SummarizedItem struct {
	Item    ContentItem
	Summary Summary
}

// DigestText is the structured output of the summarization collaborator.
type DigestText struct {
	ShortTitle string
	Synopsis   string
}

// RecipientProfile describes one digest recipient; read-only to the pipeline.
type RecipientProfile struct {
	Email      string
	Name       string
	Background string
	Interests  string
}

// DeliveryRecord marks one (content item, recipient) pair as delivered.
// At most one record per pair ever exists.
type DeliveryRecord struct {
	ContentItemID int64
	Recipient     string
	DeliveredAt   time.Time
}

// RankedItem is one entry of the ranking collaborator's output.
type RankedItem struct {
	ContentItemID int64
	Score         float64
}

// RenderedDigest is the message handed to the transport.
type RenderedDigest struct {
	Subject string
	Body    string
}

// Window bounds the publication times a run considers.
type Window struct {
	Since time.Time
	Until time.Time
}

// LastHours builds the window ending at now and reaching back the given hours.
func LastHours(now time.Time, hours int) Window {
	return Window{Since: now.Add(-time.Duration(hours) * time.Hour), Until: now}
}

// Contains reports whether t falls inside the window (inclusive bounds).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Until)
}
