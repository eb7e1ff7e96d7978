package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
	"ResearchReporter/internal/search"
)

const (
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultTimeout     = 10 * time.Second
	defaultMaxContent  = 5000
	defaultConcurrency = 5
	maxTitleChars      = 200
	maxParagraphs      = 20
	minQuoteChars      = 20
	maxQuoteChars      = 500
)

var (
	containerSelectors = []string{"article", ".article", ".content", ".post", "main", ".main"}
	quoteSelector      = `blockquote, q, .quote, [class*="quote"]`
	authorSelector     = `[class*="author"], .author, [rel="author"]`
)

// Options configure fetching.
type Options struct {
	UserAgent       string
	Timeout         time.Duration
	MaxContentChars int
	Concurrency     int
}

// Scraper fetches pages and extracts their readable parts.
type Scraper struct {
	client *http.Client
	opts   Options
	logger *slog.Logger
}

var _ ports.ContentScraper = (*Scraper)(nil)

// NewScraper wires an HTTP client; zero options fall back to the defaults.
func NewScraper(client *http.Client, opts Options, logger *slog.Logger) *Scraper {
	if client == nil {
		client = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = defaultMaxContent
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{client: client, opts: opts, logger: logger.With("component", "scraper")}
}

// Scrape fetches a single page. Invalid URLs are rejected before any request is made.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*domain.ScrapedContent, error) {
	parsed, err := search.ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	doc, err := s.fetchDocument(ctx, parsed.String())
	if err != nil {
		return nil, err
	}

	content := extract(doc, s.opts.MaxContentChars)
	content.URL = parsed.String()
	content.Source = strings.TrimPrefix(parsed.Hostname(), "www.")
	return content, nil
}

// ScrapeAll fetches urls with bounded parallelism. Failed pages are logged and
// left out; the result keeps input order and is never nil.
func (s *Scraper) ScrapeAll(ctx context.Context, urls []string) []domain.ScrapedContent {
	slots := make([]*domain.ScrapedContent, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			content, err := s.Scrape(gctx, u)
			if err != nil {
				s.logger.Warn("scrape failed", "url", u, "error", err)
				return nil
			}
			content.Source = fmt.Sprintf("Source %d (%s)", i+1, content.Source)
			slots[i] = content
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.ScrapedContent, 0, len(urls))
	for _, c := range slots {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrUnexpectedStatus, pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extract(doc *goquery.Document, maxContent int) *domain.ScrapedContent {
	doc.Find("script, style, noscript, template").Remove()

	return &domain.ScrapedContent{
		Title:         clip(firstText(doc.Find("title"), doc.Find("h1").First()), maxTitleChars),
		Content:       clip(bodyText(doc), maxContent),
		Quotes:        quotes(doc),
		Author:        author(doc),
		PublishedDate: publishedDate(doc),
	}
}

func bodyText(doc *goquery.Document) string {
	for _, sel := range containerSelectors {
		if text := squash(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}

	var paragraphs []string
	doc.Find("p").Slice(0, min(maxParagraphs, doc.Find("p").Length())).Each(func(_ int, p *goquery.Selection) {
		if text := squash(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n")
	}

	return squash(doc.Find("body").Text())
}

func quotes(doc *goquery.Document) []string {
	out := make([]string, 0)
	seen := map[string]struct{}{}
	doc.Find(quoteSelector).Each(func(_ int, q *goquery.Selection) {
		text := squash(q.Text())
		n := utf8.RuneCountInString(text)
		if n <= minQuoteChars || n >= maxQuoteChars {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	})
	return out
}

func author(doc *goquery.Document) string {
	if name := squash(doc.Find(authorSelector).First().Text()); name != "" {
		return clip(name, maxTitleChars)
	}
	name, _ := doc.Find(`meta[name="author"]`).Attr("content")
	return strings.TrimSpace(name)
}

func publishedDate(doc *goquery.Document) string {
	if value, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	if value, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return clip(squash(doc.Find(`[class*="date"]`).First().Text()), 100)
}

func firstText(selections ...*goquery.Selection) string {
	for _, sel := range selections {
		if text := squash(sel.First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
