package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
	"ResearchReporter/internal/search"
)

const DuckDuckGoName = "duckduckgo"

// DuckDuckGo scrapes the HTML results page; it needs no API key.
type DuckDuckGo struct {
	endpoint   string
	userAgent  string
	maxResults int
	client     *http.Client
}

var _ ports.SearchProvider = (*DuckDuckGo)(nil)

// NewDuckDuckGo wires an HTTP client; endpoint defaults to the html.duckduckgo.com form.
func NewDuckDuckGo(endpoint, userAgent string, maxResults int, client *http.Client) *DuckDuckGo {
	if endpoint == "" {
		endpoint = "https://html.duckduckgo.com/html/"
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &DuckDuckGo{endpoint: endpoint, userAgent: userAgent, maxResults: maxResults, client: client}
}

// Name identifies the provider inside the registry.
func (d *DuckDuckGo) Name() string {
	return DuckDuckGoName
}

// Search fetches the results page and extracts result links.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	pageURL, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint %s: %w", domain.ErrSearch, d.endpoint, err)
	}
	q := pageURL.Query()
	q.Set("q", strings.TrimSpace(query))
	pageURL.RawQuery = q.Encode()

	doc, err := d.fetchDocument(ctx, pageURL.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}

	results := make([]domain.SearchResult, 0)
	seen := make(map[string]struct{})
	doc.Find(".result").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		link := item.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		// Ads and unusable links must not count toward maxResults.
		target, err := search.ValidateURL(unwrapRedirect(href))
		if err != nil || strings.HasSuffix(target.Hostname(), "duckduckgo.com") {
			return true
		}
		if _, dup := seen[target.String()]; dup {
			return true
		}
		seen[target.String()] = struct{}{}
		results = append(results, domain.SearchResult{
			URL:     target.String(),
			Title:   strings.TrimSpace(link.Text()),
			Content: strings.TrimSpace(item.Find(".result__snippet").First().Text()),
		})
		return d.maxResults <= 0 || len(results) < d.maxResults
	})
	return results, nil
}

func (d *DuckDuckGo) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: duckduckgo returned %s", domain.ErrUnexpectedStatus, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// unwrapRedirect resolves //duckduckgo.com/l/?uddg=<target> links to their target.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(parsed.Hostname(), "duckduckgo.com") && strings.HasPrefix(parsed.Path, "/l/") {
		if target := parsed.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}
