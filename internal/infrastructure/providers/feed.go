package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

const FeedName = "feed"

// Feed searches an RSS/Atom endpoint whose URL template takes the escaped query.
type Feed struct {
	urlTemplate string
	userAgent   string
	maxResults  int
	client      *http.Client
}

var _ ports.SearchProvider = (*Feed)(nil)

// NewFeed builds a feed-backed provider. urlTemplate must contain one %s.
func NewFeed(urlTemplate, userAgent string, maxResults int, client *http.Client) *Feed {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Feed{urlTemplate: urlTemplate, userAgent: userAgent, maxResults: maxResults, client: client}
}

// Name identifies the provider inside the registry.
func (f *Feed) Name() string {
	return FeedName
}

// Search fetches and parses the feed for query.
func (f *Feed) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}
	if !strings.Contains(f.urlTemplate, "%s") {
		return nil, fmt.Errorf("%w: feed url template %q has no query placeholder", domain.ErrSearch, f.urlTemplate)
	}

	feedURL := fmt.Sprintf(f.urlTemplate, url.QueryEscape(strings.TrimSpace(query)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrSearch, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: feed request: %w", domain.ErrSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %w: feed returned %s", domain.ErrSearch, domain.ErrUnexpectedStatus, resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: feed parse failed: %w", domain.ErrSearch, err)
	}

	results := make([]domain.SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if f.maxResults > 0 && len(results) >= f.maxResults {
			break
		}
		if strings.TrimSpace(item.Link) == "" {
			continue
		}

		var published string
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC().Format(time.RFC3339)
		}

		results = append(results, domain.SearchResult{
			URL:           strings.TrimSpace(item.Link),
			Title:         strings.TrimSpace(item.Title),
			Content:       stripHTML(item.Description),
			PublishedDate: published,
		})
	}
	return results, nil
}

func stripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
