package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"NewsDigest/internal/domain"
)

type scriptedRanker struct {
	scores []domain.RankedItem
	err    error
}

func (s *scriptedRanker) Score(ctx context.Context, profile domain.RecipientProfile, candidates []domain.SummarizedItem) ([]domain.RankedItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.scores, nil
}

func candidate(id int64, publishedAt time.Time) domain.SummarizedItem {
	return domain.SummarizedItem{
		Item:    domain.ContentItem{ID: id, PublishedAt: publishedAt},
		Summary: domain.Summary{ContentItemID: id},
	}
}

func orderOf(items []domain.SummarizedItem) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.Item.ID
	}
	return ids
}

func TestRankingStageOrdersByScore(t *testing.T) {
	t.Parallel()

	candidates := []domain.SummarizedItem{
		candidate(1, testNow.Add(-3*time.Hour)),
		candidate(2, testNow.Add(-2*time.Hour)),
		candidate(3, testNow.Add(-1*time.Hour)),
	}
	ranker := &scriptedRanker{scores: []domain.RankedItem{
		{ContentItemID: 1, Score: 40},
		{ContentItemID: 2, Score: 90},
		{ContentItemID: 3, Score: 70},
	}}
	stage := NewRankingStage(ranker, nil)

	ranked, err := stage.Rank(context.Background(), domain.RecipientProfile{}, candidates)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	got := orderOf(ranked)
	want := []int64{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRankingStageTieBreaksByRecency(t *testing.T) {
	t.Parallel()

	older := candidate(1, testNow.Add(-3*time.Hour))
	newer := candidate(2, testNow.Add(-1*time.Hour))
	ranker := &scriptedRanker{scores: []domain.RankedItem{
		{ContentItemID: 1, Score: 50},
		{ContentItemID: 2, Score: 50},
	}}
	stage := NewRankingStage(ranker, nil)

	ranked, err := stage.Rank(context.Background(), domain.RecipientProfile{}, []domain.SummarizedItem{older, newer})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if got := orderOf(ranked); got[0] != 2 || got[1] != 1 {
		t.Fatalf("tie must break by recency, got %v", got)
	}
}

func TestRankingStageReturnsPermutation(t *testing.T) {
	t.Parallel()

	candidates := []domain.SummarizedItem{
		candidate(1, testNow.Add(-4*time.Hour)),
		candidate(2, testNow.Add(-3*time.Hour)),
		candidate(3, testNow.Add(-2*time.Hour)),
		candidate(4, testNow.Add(-1*time.Hour)),
	}
	// The collaborator omits 2 and 4, duplicates 3, and invents id 99.
	ranker := &scriptedRanker{scores: []domain.RankedItem{
		{ContentItemID: 3, Score: 80},
		{ContentItemID: 3, Score: 75},
		{ContentItemID: 99, Score: 70},
		{ContentItemID: 1, Score: 60},
	}}
	stage := NewRankingStage(ranker, nil)

	ranked, err := stage.Rank(context.Background(), domain.RecipientProfile{}, candidates)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != len(candidates) {
		t.Fatalf("expected permutation of %d candidates, got %d", len(candidates), len(ranked))
	}
	got := orderOf(ranked)
	// Scored items first, then omissions appended most recent first.
	want := []int64{3, 1, 4, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestRankingStageUnavailable(t *testing.T) {
	t.Parallel()

	stage := NewRankingStage(&scriptedRanker{err: errors.New("timeout")}, nil)
	_, err := stage.Rank(context.Background(), domain.RecipientProfile{}, []domain.SummarizedItem{
		candidate(1, testNow),
	})
	if !errors.Is(err, domain.ErrRankingUnavailable) {
		t.Fatalf("expected ErrRankingUnavailable, got %v", err)
	}
}

func TestRankingStageEmptyCandidates(t *testing.T) {
	t.Parallel()

	stage := NewRankingStage(&scriptedRanker{err: errors.New("must not be called")}, nil)
	ranked, err := stage.Rank(context.Background(), domain.RecipientProfile{}, nil)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %v", ranked)
	}
}
