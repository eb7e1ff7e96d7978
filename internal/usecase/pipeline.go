package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ResearchReporter/internal/assembler"
	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/extractor"
	"ResearchReporter/internal/metrics"
	"ResearchReporter/internal/normalizer"
	"ResearchReporter/internal/ports"
	"ResearchReporter/internal/recovery"
)

const defaultMaxPages = 5

// Stage names used in logs and metrics.
const (
	StageSearch    = "search"
	StageScrape    = "scrape"
	StageExtract   = "extract"
	StageRecover   = "recover"
	StageNormalize = "normalize"
	StageAssemble  = "assemble"
	StageTimeout   = "timeout"
)

var errEmptyQuery = errors.New("query is empty")

// PipelineDeps wires all driven adapters into the research pipeline.
type PipelineDeps struct {
	Search     ports.SearchProvider
	Scraper    ports.ContentScraper
	Extractor  *extractor.Extractor
	Recovery   *recovery.Chain
	Normalizer *normalizer.Normalizer
	// Assembler is required; it also builds fallback reports.
	Assembler  *assembler.Assembler
	Repository ports.ReportRepository
	// MaxPages bounds how many search results are scraped.
	MaxPages int
	// Timeout bounds a whole report. Zero disables it.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Pipeline implements the research workflow: search, scrape, extract,
// recover, normalize, assemble.
type Pipeline struct {
	search     ports.SearchProvider
	scraper    ports.ContentScraper
	extractor  *extractor.Extractor
	recovery   *recovery.Chain
	normalizer *normalizer.Normalizer
	assembler  *assembler.Assembler
	repository ports.ReportRepository
	maxPages   int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	chain := deps.Recovery
	if chain == nil {
		chain = recovery.NewChain()
	}
	maxPages := deps.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	return &Pipeline{
		search:     deps.Search,
		scraper:    deps.Scraper,
		extractor:  deps.Extractor,
		recovery:   chain,
		normalizer: deps.Normalizer,
		assembler:  deps.Assembler,
		repository: deps.Repository,
		maxPages:   maxPages,
		timeout:    deps.Timeout,
		logger:     logger.With("component", "pipeline"),
	}
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

// Research produces a report for query. It always returns a renderable report;
// failures yield the fallback report with category "Error".
func (p *Pipeline) Research(ctx context.Context, query string) domain.Report {
	query = strings.TrimSpace(query)
	started := time.Now()

	runCtx := ctx
	cancel := func() {}
	if p.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	done := make(chan runOutcome, 1)
	go func() {
		report, err := p.run(runCtx, query)
		done <- runOutcome{report: report, err: err}
	}()

	report, err := awaitRun(runCtx, done)
	if err != nil {
		report = p.fallback(query, err)
	} else {
		p.persist(ctx, report)
	}

	metrics.RecordReport(report.Failed())
	metrics.ObserveStage("total", started)
	p.logger.Info("research finished",
		"query", query,
		"slug", report.Article.Slug,
		"failed", report.Failed(),
		"took", time.Since(started),
	)
	return report
}

type runOutcome struct {
	report domain.Report
	err    error
}

// awaitRun waits for the run or the deadline. A run that has already
// finished when the deadline fires still wins.
func awaitRun(ctx context.Context, done <-chan runOutcome) (domain.Report, error) {
	select {
	case res := <-done:
		return res.report, res.err
	case <-ctx.Done():
		select {
		case res := <-done:
			return res.report, res.err
		default:
			return domain.Report{}, &stageError{stage: StageTimeout, err: fmt.Errorf("report generation timed out: %w", ctx.Err())}
		}
	}
}

func (p *Pipeline) run(ctx context.Context, query string) (domain.Report, error) {
	if query == "" {
		return domain.Report{}, &stageError{stage: StageSearch, err: errEmptyQuery}
	}
	if p.search == nil || p.extractor == nil || p.normalizer == nil || p.assembler == nil {
		return domain.Report{}, &stageError{stage: StageSearch, err: errors.New("pipeline is not fully configured")}
	}

	stageStart := time.Now()
	results, err := p.search.Search(ctx, query)
	metrics.ObserveStage(StageSearch, stageStart)
	if err != nil {
		return domain.Report{}, &stageError{stage: StageSearch, err: err}
	}
	if len(results) == 0 {
		return domain.Report{}, &stageError{stage: StageSearch, err: domain.ErrNoResults}
	}

	scraped := p.scrape(ctx, results)

	stageStart = time.Now()
	extracted, err := p.extractor.Extract(ctx, query, results, scraped)
	metrics.ObserveStage(StageExtract, stageStart)
	if err != nil {
		return domain.Report{}, &stageError{stage: StageExtract, err: err}
	}

	stageStart = time.Now()
	doc, recovered := p.recovery.Recover(extracted.Text, query)
	metrics.ObserveStage(StageRecover, stageStart)
	metrics.RecoveryTotal.WithLabelValues(recovered.Strategy).Inc()
	if recovered.Fallback() {
		p.logger.Warn("document recovery fell back to minimal document",
			"query", query,
			"attempts", len(recovered.Attempts),
		)
	} else {
		p.logger.Debug("document recovered", "strategy", recovered.Strategy)
	}

	stageStart = time.Now()
	allow := normalizer.NewAllowList(extracted.Permitted)
	entities := p.normalizer.Normalize(ctx, doc, allow)
	metrics.ObserveStage(StageNormalize, stageStart)

	stageStart = time.Now()
	report := p.assembler.Assemble(ctx, assembler.Draft{
		Query:       query,
		Document:    doc,
		Entities:    entities,
		AllowedURLs: allow.Len(),
	})
	metrics.ObserveStage(StageAssemble, stageStart)

	return report, nil
}

func (p *Pipeline) scrape(ctx context.Context, results []domain.SearchResult) []domain.ScrapedContent {
	if p.scraper == nil {
		return []domain.ScrapedContent{}
	}

	urls := make([]string, 0, p.maxPages)
	for _, r := range results {
		if len(urls) == p.maxPages {
			break
		}
		urls = append(urls, r.URL)
	}

	started := time.Now()
	scraped := p.scraper.ScrapeAll(ctx, urls)
	metrics.ObserveStage(StageScrape, started)
	metrics.ScrapedPages.Observe(float64(len(scraped)))
	if failed := len(urls) - len(scraped); failed > 0 {
		metrics.ScrapeFailures.Add(float64(failed))
	}

	p.logger.Debug("pages scraped", "requested", len(urls), "scraped", len(scraped))
	return scraped
}

func (p *Pipeline) fallback(query string, err error) domain.Report {
	stage := StageSearch
	var se *stageError
	if errors.As(err, &se) {
		stage = se.stage
	}
	metrics.FallbacksTotal.WithLabelValues(stage).Inc()
	p.logger.Error("research failed, returning fallback report",
		"query", query,
		"stage", stage,
		"error", err,
	)
	return p.assembler.Fallback(query, fallbackReason(err))
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoResults):
		return "No search results found"
	case errors.Is(err, errEmptyQuery):
		return "Query is empty"
	default:
		return err.Error()
	}
}

func (p *Pipeline) persist(ctx context.Context, report domain.Report) {
	if p.repository == nil || report.Failed() {
		return
	}
	if err := p.repository.Save(context.WithoutCancel(ctx), report); err != nil {
		p.logger.Warn("persist report failed", "slug", report.Article.Slug, "error", err)
	}
}

// Lookup returns a stored report by slug.
func (p *Pipeline) Lookup(ctx context.Context, slug string) (domain.Report, error) {
	if p.repository == nil {
		return domain.Report{}, fmt.Errorf("%w: %s", domain.ErrNotFound, slug)
	}
	return p.repository.Get(ctx, slug)
}

// Recent lists the most recently stored articles.
func (p *Pipeline) Recent(ctx context.Context, limit int) ([]domain.Article, error) {
	if p.repository == nil {
		return []domain.Article{}, nil
	}
	return p.repository.List(ctx, limit)
}
