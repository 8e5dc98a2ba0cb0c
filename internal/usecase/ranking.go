package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// RankingStage orders a recipient's eligible candidates by predicted relevance.
// The caller filters out already-delivered items before ranking, so every
// ranked item is deliverable. The stage always returns a permutation of the
// candidate set: collaborator omissions are appended by recency, unknown and
// duplicate ids are dropped.
type RankingStage struct {
	ranker ports.Ranker
	logger *slog.Logger
}

// NewRankingStage wires the ranking collaborator.
func NewRankingStage(ranker ports.Ranker, logger *slog.Logger) *RankingStage {
	return &RankingStage{ranker: ranker, logger: logger}
}

// Rank derives a fresh total order of candidates for the profile. A
// collaborator failure surfaces as ErrRankingUnavailable; there is no
// fallback to natural order.
func (r *RankingStage) Rank(ctx context.Context, profile domain.RecipientProfile, candidates []domain.SummarizedItem) ([]domain.SummarizedItem, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	scores, err := r.ranker.Score(ctx, profile, candidates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRankingUnavailable, err)
	}

	return normalizeOrder(candidates, scores, r.logger), nil
}

type scoredCandidate struct {
	candidate domain.SummarizedItem
	score     float64
}

// normalizeOrder turns collaborator scores into a deterministic permutation of
// candidates: score descending, ties by publication recency, then by id.
func normalizeOrder(candidates []domain.SummarizedItem, scores []domain.RankedItem, logger *slog.Logger) []domain.SummarizedItem {
	byID := make(map[int64]domain.SummarizedItem, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.Item.ID] = candidate
	}

	seen := make(map[int64]bool, len(scores))
	scored := make([]scoredCandidate, 0, len(candidates))
	for _, ranked := range scores {
		candidate, known := byID[ranked.ContentItemID]
		if !known || seen[ranked.ContentItemID] {
			if logger != nil {
				logger.Debug("dropping stray ranked id", "item", ranked.ContentItemID)
			}
			continue
		}
		seen[ranked.ContentItemID] = true
		scored = append(scored, scoredCandidate{candidate: candidate, score: ranked.Score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return moreRecent(scored[i].candidate, scored[j].candidate)
	})

	var omitted []domain.SummarizedItem
	for _, candidate := range candidates {
		if !seen[candidate.Item.ID] {
			omitted = append(omitted, candidate)
		}
	}
	sort.SliceStable(omitted, func(i, j int) bool { return moreRecent(omitted[i], omitted[j]) })
	if len(omitted) > 0 && logger != nil {
		logger.Warn("ranker omitted candidates, appending by recency", "count", len(omitted))
	}

	ordered := make([]domain.SummarizedItem, 0, len(candidates))
	for _, sc := range scored {
		ordered = append(ordered, sc.candidate)
	}
	return append(ordered, omitted...)
}

func moreRecent(a, b domain.SummarizedItem) bool {
	if !a.Item.PublishedAt.Equal(b.Item.PublishedAt) {
		return a.Item.PublishedAt.After(b.Item.PublishedAt)
	}
	return a.Item.ID < b.Item.ID
}
