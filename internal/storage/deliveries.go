package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

var _ ports.DeliveryLedger = (*Store)(nil)

// IsDelivered reports whether the (item, recipient) pair already has a record.
func (s *Store) IsDelivered(ctx context.Context, itemID int64, recipient string) (bool, error) {
	query, args, err := builder.
		Select("COUNT(1)").
		From("deliveries").
		Where(sq.Eq{"content_item_id": itemID, "recipient": recipient}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delivery lookup: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("lookup delivery %d/%s: %w", itemID, recipient, err)
	}
	return count > 0, nil
}

// DeliveredSet returns which of the given items are already recorded as
// delivered to the recipient.
func (s *Store) DeliveredSet(ctx context.Context, recipient string, itemIDs []int64) (map[int64]bool, error) {
	result := make(map[int64]bool, len(itemIDs))
	if len(itemIDs) == 0 {
		return result, nil
	}

	query, args, err := builder.
		Select("content_item_id").
		From("deliveries").
		Where(sq.Eq{"recipient": recipient, "content_item_id": itemIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delivered-set query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delivered set for %s: %w", recipient, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan delivered id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivered set: %w", err)
	}
	return result, nil
}

// DeliveredWithin lists the recipient's delivery records whose delivery time
// falls inside the window, most recent first.
func (s *Store) DeliveredWithin(ctx context.Context, recipient string, window domain.Window) ([]domain.DeliveryRecord, error) {
	query, args, err := builder.
		Select("content_item_id", "recipient", "delivered_at").
		From("deliveries").
		Where(sq.Eq{"recipient": recipient}).
		Where(sq.GtOrEq{"delivered_at": formatTime(window.Since)}).
		Where(sq.LtOrEq{"delivered_at": formatTime(window.Until)}).
		OrderBy("delivered_at DESC", "content_item_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delivery-history query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query delivery history for %s: %w", recipient, err)
	}
	defer rows.Close()

	var records []domain.DeliveryRecord
	for rows.Next() {
		var (
			record      domain.DeliveryRecord
			deliveredAt string
		)
		if err := rows.Scan(&record.ContentItemID, &record.Recipient, &deliveredAt); err != nil {
			return nil, fmt.Errorf("scan delivery record: %w", err)
		}
		if record.DeliveredAt, err = parseTime(deliveredAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery history: %w", err)
	}
	return records, nil
}

// RecordDelivered creates the delivery record for the pair. The primary key on
// (content_item_id, recipient) makes concurrent attempts collapse into exactly
// one row; the loser gets domain.ErrAlreadyRecorded, which callers treat as
// already satisfied.
func (s *Store) RecordDelivered(ctx context.Context, itemID int64, recipient string, at time.Time) error {
	query, args, err := builder.
		Insert("deliveries").
		Columns("content_item_id", "recipient", "delivered_at").
		Values(itemID, recipient, formatTime(at)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delivery insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRecorded
		}
		return fmt.Errorf("record delivery %d/%s: %w", itemID, recipient, err)
	}
	return nil
}
