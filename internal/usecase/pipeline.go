package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const (
	defaultTopN             = 10
	defaultRecipientWorkers = 4
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source           ports.ContentSource
	Content          ports.ContentStore
	Summaries        ports.SummaryStore
	Ledger           ports.DeliveryLedger
	Profiles         ports.ProfileStore
	Summarizer       ports.Summarizer
	Ranker           ports.Ranker
	Transport        ports.Transport
	TopN             int
	SummaryWorkers   int
	RecipientWorkers int
	SubjectPrefix    string
	Logger           *slog.Logger
	Now              func() time.Time
}

// Pipeline sequences ingest, summarize, and per-recipient rank/deliver for one
// run. Re-running over the same store state and window produces no new side
// effects beyond what the first run would have: summaries are
// existence-checked and deliveries are gated by the ledger.
type Pipeline struct {
	source    ports.ContentSource
	content   ports.ContentStore
	summaries ports.SummaryStore
	ledger    ports.DeliveryLedger
	profiles  ports.ProfileStore
	transport ports.Transport

	summaryStage *SummaryStage
	rankingStage *RankingStage

	topN             int
	recipientWorkers int
	subjectPrefix    string
	logger           *slog.Logger
	now              func() time.Time
}

// RunOptions tweaks a single run.
type RunOptions struct {
	// SkipIngest leaves the content store untouched and summarizes/delivers
	// whatever is already there. Useful for replaying after a crash.
	SkipIngest bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	topN := deps.TopN
	if topN <= 0 {
		topN = defaultTopN
	}
	workers := deps.RecipientWorkers
	if workers <= 0 {
		workers = defaultRecipientWorkers
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:           deps.Source,
		content:          deps.Content,
		summaries:        deps.Summaries,
		ledger:           deps.Ledger,
		profiles:         deps.Profiles,
		transport:        deps.Transport,
		summaryStage:     NewSummaryStage(deps.Content, deps.Summaries, deps.Summarizer, deps.SummaryWorkers, componentLogger(deps.Logger, "summary-stage")),
		rankingStage:     NewRankingStage(deps.Ranker, componentLogger(deps.Logger, "ranking-stage")),
		topN:             topN,
		recipientWorkers: workers,
		subjectPrefix:    deps.SubjectPrefix,
		logger:           deps.Logger,
		now:              now,
	}
}

// Run executes one pipeline pass over the window. Only ingestion failures and
// unrecoverable storage errors surface as errors; everything else is
// aggregated into the report.
func (p *Pipeline) Run(ctx context.Context, window domain.Window, opts RunOptions) (domain.RunReport, error) {
	report := domain.RunReport{StartedAt: p.now()}

	if !opts.SkipIngest {
		ingested, err := p.ingest(ctx, window)
		if err != nil {
			report.State = domain.StateFailedEarly
			report.FinishedAt = p.now()
			return report, &domain.FatalIngestionError{Cause: err}
		}
		report.ItemsIngested = ingested
	}

	stage, err := p.summaryStage.GenerateMissing(ctx, window)
	if err != nil {
		report.State = domain.StateAborted
		report.FinishedAt = p.now()
		return report, fmt.Errorf("summary stage: %w", err)
	}
	report.Summaries = stage

	recipients, err := p.profiles.Recipients(ctx)
	if err != nil {
		report.State = domain.StateAborted
		report.FinishedAt = p.now()
		return report, fmt.Errorf("load recipients: %w", err)
	}

	candidates, err := p.summaries.SummariesWithin(ctx, window)
	if err != nil {
		report.State = domain.StateAborted
		report.FinishedAt = p.now()
		return report, fmt.Errorf("load summaries: %w", err)
	}

	report.Recipients = p.deliverAll(ctx, recipients, candidates)
	report.State = domain.StateDone
	report.FinishedAt = p.now()

	p.info("run complete",
		"ingested", report.ItemsIngested,
		"summarized", report.Summaries.Succeeded,
		"summary_failures", len(report.Summaries.Failed),
		"sent", report.Sent(),
		"skipped", report.Skipped(),
		"failed", report.FailedRecipients())
	return report, nil
}

func (p *Pipeline) ingest(ctx context.Context, window domain.Window) (int, error) {
	items, err := p.source.FetchWindow(ctx, window)
	if err != nil {
		return 0, fmt.Errorf("fetch window: %w", err)
	}
	ingested, err := p.content.UpsertItems(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("persist items: %w", err)
	}
	p.info("ingest complete", "fetched", len(items), "new", ingested)
	return ingested, nil
}

// deliverAll processes recipients independently on a bounded pool. One
// recipient's failure never blocks another; each RANK/DELIVER touches disjoint
// ledger keys, and the pair uniqueness lives in the storage schema.
func (p *Pipeline) deliverAll(ctx context.Context, recipients []domain.RecipientProfile, candidates []domain.SummarizedItem) []domain.RecipientOutcome {
	outcomes := make([]domain.RecipientOutcome, len(recipients))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.recipientWorkers)
	for i, profile := range recipients {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, profile domain.RecipientProfile) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = p.deliverOne(ctx, profile, candidates)
		}(i, profile)
	}
	wg.Wait()

	return outcomes
}

func (p *Pipeline) deliverOne(ctx context.Context, profile domain.RecipientProfile, candidates []domain.SummarizedItem) domain.RecipientOutcome {
	outcome := domain.RecipientOutcome{Recipient: profile.Email}

	eligible, err := p.eligibleFor(ctx, profile, candidates)
	if err != nil {
		p.warn("delivery ledger lookup failed", "recipient", profile.Email, "error", err)
		outcome.Status = domain.OutcomeFailed
		outcome.Reason = domain.ReasonLedgerUnavailable
		return outcome
	}
	if len(eligible) == 0 {
		outcome.Status = domain.OutcomeSkippedNoContent
		return outcome
	}

	// Ranking sees the full eligible set; the cutoff comes after so lower
	// salience items stay in contention for future runs.
	ranked, err := p.rankingStage.Rank(ctx, profile, eligible)
	if err != nil {
		p.warn("ranking failed, skipping recipient", "recipient", profile.Email, "error", err)
		outcome.Status = domain.OutcomeFailed
		outcome.Reason = domain.ReasonRankingUnavailable
		return outcome
	}

	top := ranked
	if len(top) > p.topN {
		top = top[:p.topN]
	}

	digest := p.renderDigest(profile, top)
	if err := p.transport.Send(ctx, profile, digest); err != nil {
		sendErr := &domain.TransportError{Recipient: profile.Email, Cause: err}
		p.warn("transport failed, skipping recipient", "recipient", profile.Email, "error", sendErr)
		outcome.Status = domain.OutcomeFailed
		outcome.Reason = domain.ReasonTransportFailed
		return outcome
	}

	// Records are written only after the transport confirmed the send; a
	// crash before this point leaves the pair eligible for the next run.
	deliveredAt := p.now()
	for _, item := range top {
		err := p.ledger.RecordDelivered(ctx, item.Item.ID, profile.Email, deliveredAt)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrAlreadyRecorded):
			p.debug("delivery already recorded", "item", item.Item.ID, "recipient", profile.Email)
		default:
			// The email went out; losing the record risks one duplicate
			// next run, which the ledger contract tolerates.
			p.warn("recording delivery failed", "item", item.Item.ID, "recipient", profile.Email, "error", err)
		}
	}

	outcome.Status = domain.OutcomeSent
	outcome.Items = len(top)
	return outcome
}

// eligibleFor drops candidates the ledger already shows as delivered to this
// recipient, keeping the incoming recency order.
func (p *Pipeline) eligibleFor(ctx context.Context, profile domain.RecipientProfile, candidates []domain.SummarizedItem) ([]domain.SummarizedItem, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(candidates))
	for i, candidate := range candidates {
		ids[i] = candidate.Item.ID
	}
	delivered, err := p.ledger.DeliveredSet(ctx, profile.Email, ids)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.SummarizedItem, 0, len(candidates))
	for _, candidate := range candidates {
		if !delivered[candidate.Item.ID] {
			eligible = append(eligible, candidate)
		}
	}
	return eligible, nil
}

func (p *Pipeline) renderDigest(profile domain.RecipientProfile, items []domain.SummarizedItem) domain.RenderedDigest {
	subject := fmt.Sprintf("Your digest for %s", p.now().Format("January 2, 2006"))
	if p.subjectPrefix != "" {
		subject = p.subjectPrefix + " " + subject
	}

	var body strings.Builder
	greeting := "Hi,"
	if profile.Name != "" {
		greeting = fmt.Sprintf("Hi %s,", profile.Name)
	}
	body.WriteString(greeting + "\n\nHere are today's top picks:\n\n")

	for i, item := range items {
		fmt.Fprintf(&body, "%d. %s\n   %s\n   %s\n\n",
			i+1,
			item.Summary.ShortTitle,
			item.Summary.Synopsis,
			item.Item.URL)
	}
	body.WriteString("Until tomorrow,\nNewsDigest\n")

	return domain.RenderedDigest{Subject: subject, Body: body.String()}
}

func componentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("component", component)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
