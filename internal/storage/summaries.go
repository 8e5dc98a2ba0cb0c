package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

var _ ports.SummaryStore = (*Store)(nil)

// SaveSummary persists a summary keyed by content item. Summaries are written
// exactly once; a second save for the same item is a no-op, never an overwrite.
func (s *Store) SaveSummary(ctx context.Context, summary domain.Summary) error {
	query, args, err := builder.
		Insert("summaries").
		Options("OR IGNORE").
		Columns("content_item_id", "short_title", "synopsis", "created_at").
		Values(summary.ContentItemID, summary.ShortTitle, summary.Synopsis, formatTime(summary.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build summary insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert summary for item %d: %w", summary.ContentItemID, err)
	}
	return nil
}

// SummariesWithin returns summarized items whose summary timestamp (the item's
// publication time) falls inside the window, most recent first.
func (s *Store) SummariesWithin(ctx context.Context, window domain.Window) ([]domain.SummarizedItem, error) {
	query, args, err := builder.
		Select("c.id", "c.source_id", "c.natural_key", "c.title", "c.url", "c.body", "c.full_text",
			"c.kind", "c.published_at", "c.scraped_at",
			"s.short_title", "s.synopsis", "s.created_at").
		From("summaries s").
		Join("content_items c ON c.id = s.content_item_id").
		Where(sq.GtOrEq{"s.created_at": formatTime(window.Since)}).
		Where(sq.LtOrEq{"s.created_at": formatTime(window.Until)}).
		OrderBy("c.published_at DESC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summaries query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var results []domain.SummarizedItem
	for rows.Next() {
		var (
			entry       domain.SummarizedItem
			kind        string
			publishedAt string
			scrapedAt   string
			createdAt   string
		)
		if err := rows.Scan(&entry.Item.ID, &entry.Item.SourceID, &entry.Item.NaturalKey,
			&entry.Item.Title, &entry.Item.URL, &entry.Item.Body, &entry.Item.FullText,
			&kind, &publishedAt, &scrapedAt,
			&entry.Summary.ShortTitle, &entry.Summary.Synopsis, &createdAt); err != nil {
			return nil, fmt.Errorf("scan summarized item: %w", err)
		}
		entry.Item.Kind = domain.ContentKind(kind)
		entry.Summary.ContentItemID = entry.Item.ID

		if entry.Item.PublishedAt, err = parseTime(publishedAt); err != nil {
			return nil, err
		}
		if entry.Item.ScrapedAt, err = parseTime(scrapedAt); err != nil {
			return nil, err
		}
		if entry.Summary.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summaries: %w", err)
	}
	return results, nil
}
