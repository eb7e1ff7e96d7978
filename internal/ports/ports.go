package ports

import (
	"context"
	"time"

	"ResearchReporter/internal/domain"
)

// SearchProvider returns a bounded list of candidate pages for a query.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// ContentScraper fetches pages and extracts their readable parts.
// ScrapeAll omits pages that fail and keeps input order.
type ContentScraper interface {
	Scrape(ctx context.Context, url string) (*domain.ScrapedContent, error)
	ScrapeAll(ctx context.Context, urls []string) []domain.ScrapedContent
}

// TextGenerator is the LLM capability used by the extractor.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest carries a single prompt exchange.
type GenerateRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
	// JSONOnly asks the generator for raw JSON output when it supports it.
	JSONOnly bool
}

// ImageResolver maps (topic, index) to an illustrative image URL. It never fails.
type ImageResolver interface {
	Resolve(ctx context.Context, topic string, index int) string
}

// ImageCache memoizes resolved images by (topic, index).
type ImageCache interface {
	Get(topic string, index int) (string, bool)
	Put(topic string, index int, url string)
}

// IDGenerator mints identifiers for report entities.
type IDGenerator interface {
	NewID() string
}

// Clock captures the generation timestamp of a report.
type Clock interface {
	Now() time.Time
}

// ReportRepository keeps recent reports for the lifetime of the process.
type ReportRepository interface {
	Save(ctx context.Context, report domain.Report) error
	Get(ctx context.Context, slug string) (domain.Report, error)
	List(ctx context.Context, limit int) ([]domain.Article, error)
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
