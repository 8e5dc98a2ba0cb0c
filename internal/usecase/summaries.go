package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const defaultSummaryWorkers = 4

// SummaryStage generates summaries for content items that lack one. Items are
// processed independently; one item's failure never aborts the batch.
type SummaryStage struct {
	content    ports.ContentStore
	summaries  ports.SummaryStore
	summarizer ports.Summarizer
	workers    int
	logger     *slog.Logger
}

// NewSummaryStage wires the stage; workers <= 0 falls back to the default pool size.
func NewSummaryStage(content ports.ContentStore, summaries ports.SummaryStore, summarizer ports.Summarizer, workers int, logger *slog.Logger) *SummaryStage {
	if workers <= 0 {
		workers = defaultSummaryWorkers
	}
	return &SummaryStage{
		content:    content,
		summaries:  summaries,
		summarizer: summarizer,
		workers:    workers,
		logger:     logger,
	}
}

// GenerateMissing summarizes every item in the window that has no summary yet.
// Items already summarized are never re-queried here: the candidate query
// returns only summary-less items, so re-running over an overlapping window is
// a no-op for them. Only a failing candidate query is fatal for the stage.
func (s *SummaryStage) GenerateMissing(ctx context.Context, window domain.Window) (domain.StageReport, error) {
	items, err := s.content.ItemsWithoutSummary(ctx, window)
	if err != nil {
		return domain.StageReport{}, fmt.Errorf("%w: query summarization candidates: %v", domain.ErrStageUnavailable, err)
	}

	report := domain.StageReport{Attempted: len(items)}
	if len(items) == 0 {
		return report, nil
	}

	type result struct {
		itemID int64
		err    error
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []result
	)
	sem := make(chan struct{}, s.workers)

	for _, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(item domain.ContentItem) {
			defer wg.Done()
			defer func() { <-sem }()

			err := s.summarizeOne(ctx, item)
			mu.Lock()
			results = append(results, result{itemID: item.ID, err: err})
			mu.Unlock()
		}(item)
	}
	wg.Wait()

	for _, res := range results {
		if res.err == nil {
			report.Succeeded++
			continue
		}
		report.Failed = append(report.Failed, res.itemID)
		s.warn("summarization failed", "item", res.itemID, "error", res.err)
	}
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i] < report.Failed[j] })

	return report, nil
}

// summarizeOne calls the collaborator and persists the summary. The summary
// timestamp is the item's publication time, never wall clock.
func (s *SummaryStage) summarizeOne(ctx context.Context, item domain.ContentItem) error {
	body := item.Body
	if item.FullText != "" {
		body = item.FullText
	}

	text, err := s.summarizer.Summarize(ctx, item.Title, body)
	if err != nil {
		return &domain.SummarizationError{ContentItemID: item.ID, Cause: err}
	}

	summary := domain.Summary{
		ContentItemID: item.ID,
		ShortTitle:    text.ShortTitle,
		Synopsis:      text.Synopsis,
		CreatedAt:     item.PublishedAt,
	}
	if err := s.summaries.SaveSummary(ctx, summary); err != nil {
		return &domain.SummarizationError{ContentItemID: item.ID, Cause: fmt.Errorf("persist summary: %w", err)}
	}
	return nil
}

func (s *SummaryStage) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
