package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

var _ ports.ProfileStore = (*Store)(nil)

// Recipients lists every stored recipient profile.
func (s *Store) Recipients(ctx context.Context) ([]domain.RecipientProfile, error) {
	query, args, err := builder.
		Select("email", "name", "background", "interests").
		From("recipients").
		OrderBy("email ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipients query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipients: %w", err)
	}
	defer rows.Close()

	var profiles []domain.RecipientProfile
	for rows.Next() {
		var profile domain.RecipientProfile
		if err := rows.Scan(&profile.Email, &profile.Name, &profile.Background, &profile.Interests); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipients: %w", err)
	}
	return profiles, nil
}

// SaveProfile creates or updates a recipient profile. Profiles are managed by
// the CLI, not the pipeline.
func (s *Store) SaveProfile(ctx context.Context, profile domain.RecipientProfile) error {
	now := formatTime(time.Now())
	query, args, err := builder.
		Insert("recipients").
		Columns("email", "name", "background", "interests", "created_at", "updated_at").
		Values(profile.Email, profile.Name, profile.Background, profile.Interests, now, now).
		Suffix("ON CONFLICT (email) DO UPDATE SET name = excluded.name, background = excluded.background, interests = excluded.interests, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build profile upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.Email, err)
	}
	return nil
}

// RemoveProfile deletes a recipient; the delivery ledger keeps its history.
func (s *Store) RemoveProfile(ctx context.Context, email string) (bool, error) {
	query, args, err := builder.
		Delete("recipients").
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build profile delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete profile %s: %w", email, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
