package feed

import (
	"context"
	"fmt"
	"log/slog"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
	"NewsDigest/internal/scanner"
)

// RegistrySource implements ContentSource via registered scanner strategies.
// A single failing source is logged and skipped; the fetch only fails when
// every configured source fails, because then the run has nothing to work with.
type RegistrySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ContentSource = (*RegistrySource)(nil)

// NewRegistrySource wires the scanner registry with config-defined sources.
func NewRegistrySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *RegistrySource {
	return &RegistrySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// FetchWindow iterates over configured sources and executes their scanners.
func (s *RegistrySource) FetchWindow(ctx context.Context, window domain.Window) ([]domain.ContentItem, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sources) == 0 {
		return nil, nil
	}

	s.debug("fetch window", "sources", len(s.sources),
		"since", window.Since.Format("2006-01-02 15:04"), "until", window.Until.Format("2006-01-02 15:04"))

	var (
		aggregated []domain.ContentItem
		succeeded  int
		lastErr    error
	)
	for _, source := range s.sources {
		strategy, err := s.registry.Resolve(source.Scanner)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", source.Name, err)
		}

		req := scanner.Request{
			Window:     window,
			SourceName: source.Name,
			URL:        source.URL,
			Options:    source.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			lastErr = fmt.Errorf("scan source %s: %w", source.Name, err)
			s.warn("source failed, continuing", "source", source.Name, "error", err)
			continue
		}
		succeeded++

		for i := range results {
			if results[i].SourceID == "" {
				results[i].SourceID = source.Name
			}
		}
		s.debug("source produced items", "source", source.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if succeeded == 0 && lastErr != nil {
		return nil, fmt.Errorf("all sources failed: %w", lastErr)
	}

	s.debug("fetch done", "total_items", len(aggregated))
	return aggregated, nil
}

func (s *RegistrySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *RegistrySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
