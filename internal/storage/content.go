package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

var _ ports.ContentStore = (*Store)(nil)

// UpsertItems inserts new content items and returns how many were new.
// Duplicates by (source_id, natural_key) are silently absorbed; existing rows
// stay immutable except for a one-shot full-text backfill.
func (s *Store) UpsertItems(ctx context.Context, items []domain.ContentItem) (int, error) {
	inserted := 0
	for _, item := range items {
		scrapedAt := item.ScrapedAt
		if scrapedAt.IsZero() {
			scrapedAt = time.Now()
		}

		query, args, err := builder.
			Insert("content_items").
			Options("OR IGNORE").
			Columns("source_id", "natural_key", "title", "url", "body", "full_text", "kind", "published_at", "scraped_at").
			Values(item.SourceID, item.NaturalKey, item.Title, item.URL, item.Body, item.FullText,
				string(item.Kind), formatTime(item.PublishedAt), formatTime(scrapedAt)).
			ToSql()
		if err != nil {
			return inserted, fmt.Errorf("build insert: %w", err)
		}

		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert item %s/%s: %w", item.SourceID, item.NaturalKey, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("rows affected: %w", err)
		}
		if affected > 0 {
			inserted++
			continue
		}

		if item.FullText != "" {
			if err := s.backfillFullText(ctx, item); err != nil {
				return inserted, err
			}
		}
	}
	return inserted, nil
}

// backfillFullText fills extracted text that arrived after ingestion; it never
// overwrites text that is already present.
func (s *Store) backfillFullText(ctx context.Context, item domain.ContentItem) error {
	query, args, err := builder.
		Update("content_items").
		Set("full_text", item.FullText).
		Where(sq.Eq{"source_id": item.SourceID, "natural_key": item.NaturalKey, "full_text": ""}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build full-text update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("backfill full text for %s/%s: %w", item.SourceID, item.NaturalKey, err)
	}
	return nil
}

// ItemsWithoutSummary returns items published inside the window that have no
// summary row yet, oldest first.
func (s *Store) ItemsWithoutSummary(ctx context.Context, window domain.Window) ([]domain.ContentItem, error) {
	query, args, err := builder.
		Select("c.id", "c.source_id", "c.natural_key", "c.title", "c.url", "c.body", "c.full_text",
			"c.kind", "c.published_at", "c.scraped_at").
		From("content_items c").
		LeftJoin("summaries s ON s.content_item_id = c.id").
		Where("s.content_item_id IS NULL").
		Where(sq.GtOrEq{"c.published_at": formatTime(window.Since)}).
		Where(sq.LtOrEq{"c.published_at": formatTime(window.Until)}).
		OrderBy("c.published_at ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query summarization candidates: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (domain.ContentItem, error) {
	var (
		item                   domain.ContentItem
		kind                   string
		publishedAt, scrapedAt string
	)
	if err := row.Scan(&item.ID, &item.SourceID, &item.NaturalKey, &item.Title, &item.URL,
		&item.Body, &item.FullText, &kind, &publishedAt, &scrapedAt); err != nil {
		return domain.ContentItem{}, fmt.Errorf("scan content item: %w", err)
	}
	item.Kind = domain.ContentKind(kind)

	var err error
	if item.PublishedAt, err = parseTime(publishedAt); err != nil {
		return domain.ContentItem{}, err
	}
	if item.ScrapedAt, err = parseTime(scrapedAt); err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}
