package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ResearchReporter/internal/assembler"
	"ResearchReporter/internal/config"
	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/extractor"
	"ResearchReporter/internal/httpapi"
	"ResearchReporter/internal/infrastructure/identity"
	"ResearchReporter/internal/infrastructure/images"
	"ResearchReporter/internal/infrastructure/llm"
	"ResearchReporter/internal/infrastructure/providers"
	"ResearchReporter/internal/infrastructure/scheduler"
	"ResearchReporter/internal/infrastructure/scraper"
	"ResearchReporter/internal/infrastructure/storage"
	"ResearchReporter/internal/logging"
	"ResearchReporter/internal/normalizer"
	"ResearchReporter/internal/ports"
	"ResearchReporter/internal/recovery"
	"ResearchReporter/internal/search"
	"ResearchReporter/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	store     *storage.SQLiteRepository
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	}

	generator, err := newGenerator(cfg.LLM)
	if err != nil {
		return nil, err
	}

	store, err := storage.OpenMemory(ctx, cfg.Store.Capacity)
	if err != nil {
		return nil, fmt.Errorf("open report store: %w", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	registry := newRegistry(cfg, httpClient)
	source := search.NewSource(
		registry,
		append([]string{cfg.Search.Provider}, cfg.Search.Fallbacks...),
		cfg.Search.MaxResults,
		baseLogger.With("component", "search"),
	)

	pageScraper := scraper.NewScraper(nil, scraper.Options{
		UserAgent:       cfg.Scraper.UserAgent,
		Timeout:         cfg.Scraper.Timeout,
		MaxContentChars: cfg.Scraper.MaxContentChars,
		Concurrency:     cfg.Scraper.Concurrency,
	}, baseLogger)

	ids := identity.UUIDGenerator{}
	clock := identity.SystemClock{}
	imageResolver := images.NewCached(
		images.NewPexels(cfg.Images.Endpoint, cfg.Images.APIKey, cfg.Images.RatePerMinute, nil, baseLogger.With("component", "images")),
		images.NewMemoryCache(),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Search:  source,
		Scraper: pageScraper,
		Extractor: extractor.New(generator, clock, extractor.Options{
			SystemPrompt: cfg.LLM.SystemPrompt,
			MaxTokens:    cfg.LLM.MaxTokens,
			Temperature:  cfg.LLM.Temperature,
		}, baseLogger),
		Recovery:   recovery.NewChain(),
		Normalizer: normalizer.New(imageResolver, ids, baseLogger),
		Assembler:  assembler.New(ids, clock, imageResolver, baseLogger),
		Repository: store,
		MaxPages:   cfg.Scraper.MaxPages,
		Timeout:    cfg.Pipeline.Timeout,
		Logger:     baseLogger,
	})

	refresher := usecase.NewScheduler(
		scheduler.NewIntervalScheduler(cfg.Scheduler.Interval),
		pipeline,
		cfg.Scheduler.Topics,
		baseLogger,
	)

	baseLogger.Debug("application wired",
		"search_providers", registry.Names(),
		"search_order", source.Name(),
		"llm_provider", cfg.LLM.Provider,
		"store_capacity", cfg.Store.Capacity,
	)

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		pipeline:  pipeline,
		scheduler: refresher,
		store:     store,
	}, nil
}

func newGenerator(cfg config.LLMConfig) (ports.TextGenerator, error) {
	switch cfg.Provider {
	case "", "openai":
		return llm.NewChatGPTClient(cfg, nil), nil
	case "gemini":
		return llm.NewGeminiClient(cfg), nil
	default:
		return nil, fmt.Errorf("llm provider %s is not supported", cfg.Provider)
	}
}

func newRegistry(cfg config.Config, client *http.Client) *search.Registry {
	registry := search.NewRegistry()
	register := func(p ports.SearchProvider) {
		registry.Register(search.NewThrottled(p, cfg.Search.RatePerMinute))
	}

	register(providers.NewTavily(providers.TavilyConfig{
		Endpoint:    cfg.Search.Tavily.Endpoint,
		APIKey:      cfg.Search.Tavily.APIKey,
		SearchDepth: cfg.Search.Tavily.SearchDepth,
		MaxResults:  cfg.Search.MaxResults,
	}, client))
	register(providers.NewDuckDuckGo(cfg.Search.DuckDuckGoURL, cfg.Scraper.UserAgent, cfg.Search.MaxResults, client))
	register(providers.NewFeed(cfg.Search.Feed.URLTemplate, cfg.Scraper.UserAgent, cfg.Search.MaxResults, client))
	return registry
}

// Report generates a single report for query.
func (a *Application) Report(ctx context.Context, query string) domain.Report {
	return a.pipeline.Research(ctx, query)
}

// Serve runs the HTTP API and the standing-topic scheduler until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           httpapi.NewRouter(a.pipeline, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http shutdown failed", "error", err)
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop failed", "error", err)
	}
	return serveErr
}

// Close releases the report store.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
