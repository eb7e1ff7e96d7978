// Package extractor asks the text generator for a structured research document.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

var errEmptyCompletion = errors.New("empty completion")

// Options tune the generation request.
type Options struct {
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
}

// Result is the raw generator output together with the URLs it was allowed to cite.
type Result struct {
	Text      string
	Permitted []string
}

// Extractor produces a draft document for a query.
type Extractor struct {
	generator ports.TextGenerator
	clock     ports.Clock
	opts      Options
	logger    *slog.Logger
}

// New wires an extractor around a text generator.
func New(generator ports.TextGenerator, clock ports.Clock, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		generator: generator,
		clock:     clock,
		opts:      opts,
		logger:    logger.With("component", "extractor"),
	}
}

// Extract calls the generator once. Failures are wrapped with domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, query string, results []domain.SearchResult, scraped []domain.ScrapedContent) (Result, error) {
	permitted := PermittedURLs(results)
	system := buildSystemPrompt(e.opts.SystemPrompt, query, results, scraped, permitted, e.clock.Now().UTC().Format(time.RFC3339))

	started := time.Now()
	text, err := e.generator.Generate(ctx, ports.GenerateRequest{
		SystemPrompt: system,
		UserPrompt:   buildUserPrompt(query),
		MaxTokens:    e.opts.MaxTokens,
		Temperature:  e.opts.Temperature,
		JSONOnly:     true,
	})
	if err != nil {
		return Result{Permitted: permitted}, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	if strings.TrimSpace(text) == "" {
		return Result{Permitted: permitted}, fmt.Errorf("%w: %w", domain.ErrExtraction, errEmptyCompletion)
	}

	e.logger.Debug("extraction completed",
		"query", query,
		"permitted_urls", len(permitted),
		"scraped", len(scraped),
		"response_chars", len(text),
		"took", time.Since(started),
	)
	return Result{Text: text, Permitted: permitted}, nil
}

// PermittedURLs returns the distinct result URLs in provider order.
func PermittedURLs(results []domain.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	out := make([]string, 0, len(results))
	for _, r := range results {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
