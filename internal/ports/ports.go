package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// ContentSource pulls fresh content items from upstream providers. Overlapping
// windows are expected; duplicates are absorbed by the store, not the source.
type ContentSource interface {
	FetchWindow(ctx context.Context, window domain.Window) ([]domain.ContentItem, error)
}

// ContentStore persists ingested items and answers summarization candidates.
type ContentStore interface {
	UpsertItems(ctx context.Context, items []domain.ContentItem) (int, error)
	ItemsWithoutSummary(ctx context.Context, window domain.Window) ([]domain.ContentItem, error)
}

// SummaryStore persists generated summaries, one per content item.
type SummaryStore interface {
	SaveSummary(ctx context.Context, summary domain.Summary) error
	SummariesWithin(ctx context.Context, window domain.Window) ([]domain.SummarizedItem, error)
}

// DeliveryLedger is the authoritative record of completed deliveries and the
// gate around every send attempt.
type DeliveryLedger interface {
	IsDelivered(ctx context.Context, itemID int64, recipient string) (bool, error)
	DeliveredSet(ctx context.Context, recipient string, itemIDs []int64) (map[int64]bool, error)
	DeliveredWithin(ctx context.Context, recipient string, window domain.Window) ([]domain.DeliveryRecord, error)
	RecordDelivered(ctx context.Context, itemID int64, recipient string, at time.Time) error
}

// ProfileStore lists digest recipients; profiles are managed elsewhere.
type ProfileStore interface {
	Recipients(ctx context.Context) ([]domain.RecipientProfile, error)
}

// Summarizer condenses one item into a short title and synopsis.
type Summarizer interface {
	Summarize(ctx context.Context, title, body string) (domain.DigestText, error)
}

// Ranker scores candidates against a recipient profile. The returned order
// must cover the candidate set; the ranking stage normalizes stragglers.
type Ranker interface {
	Score(ctx context.Context, profile domain.RecipientProfile, candidates []domain.SummarizedItem) ([]domain.RankedItem, error)
}

// Transport sends a rendered digest; the pipeline only sees success or failure.
type Transport interface {
	Send(ctx context.Context, recipient domain.RecipientProfile, digest domain.RenderedDigest) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
