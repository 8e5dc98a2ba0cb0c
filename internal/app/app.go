package app

import (
	"context"
	"log/slog"
	"time"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/infrastructure/feed"
	"NewsDigest/internal/infrastructure/llm"
	"NewsDigest/internal/infrastructure/newsroom"
	"NewsDigest/internal/infrastructure/scheduler"
	"NewsDigest/internal/infrastructure/smtp"
	"NewsDigest/internal/logging"
	"NewsDigest/internal/scanner"
	"NewsDigest/internal/storage"
	"NewsDigest/internal/usecase"
)

// Application wires config to the store, collaborators, and the pipeline.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance, opening the database.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(feed.NewRSSScanner(nil))
	registry.Register(feed.NewYouTubeScanner(nil))
	registry.Register(newsroom.NewScanner(nil))

	source := feed.NewRegistrySource(registry, cfg.Sources, baseLogger.With("component", "source"))
	model := llm.NewClient(cfg.OpenAI)
	mailer := smtp.NewMailer(cfg.SMTP)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:           source,
		Content:          store,
		Summaries:        store,
		Ledger:           store,
		Profiles:         store,
		Summarizer:       model,
		Ranker:           model,
		Transport:        mailer,
		TopN:             cfg.Delivery.TopN,
		SummaryWorkers:   cfg.Delivery.SummaryWorkers,
		RecipientWorkers: cfg.Delivery.RecipientWorkers,
		SubjectPrefix:    cfg.SMTP.SubjectPrefix,
		Logger:           baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, logger: baseLogger, store: store, pipeline: pipeline}, nil
}

// Close releases the application's resources.
func (a *Application) Close() error {
	return a.store.Close()
}

// Store exposes the database for management commands.
func (a *Application) Store() *storage.Store { return a.store }

// RunOnce executes a single pipeline run over the trailing window.
func (a *Application) RunOnce(ctx context.Context, hours int, skipIngest bool) (domain.RunReport, error) {
	if hours <= 0 {
		hours = a.cfg.Delivery.WindowHours
	}
	window := domain.LastHours(time.Now().In(a.cfg.Scheduler.Location()), hours)
	return a.pipeline.Run(ctx, window, usecase.RunOptions{SkipIngest: skipIngest})
}

// RunScheduled runs the pipeline immediately and then daily until ctx ends.
func (a *Application) RunScheduled(ctx context.Context) error {
	driver := scheduler.NewDailyScheduler(a.cfg.Scheduler.CronExpression, 24*time.Hour)
	sched := usecase.NewScheduler(driver, a.pipeline, a.cfg.Delivery.WindowHours, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return sched.Stop(context.Background())
}
