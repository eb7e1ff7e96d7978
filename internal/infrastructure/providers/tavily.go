package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

const (
	TavilyName          = "tavily"
	tavilyQueryMaxRunes = 400
)

// TavilyConfig configures the Tavily search API client.
type TavilyConfig struct {
	Endpoint    string
	APIKey      string
	SearchDepth string
	MaxResults  int
}

// Tavily queries the Tavily search API.
type Tavily struct {
	cfg        TavilyConfig
	httpClient *http.Client
}

var _ ports.SearchProvider = (*Tavily)(nil)

// NewTavily builds a client from configuration.
func NewTavily(cfg TavilyConfig, client *http.Client) *Tavily {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Tavily{cfg: cfg, httpClient: client}
}

// Name identifies the provider inside the registry.
func (t *Tavily) Name() string {
	return TavilyName
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results,omitempty"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		PublishedDate string  `json:"published_date"`
		Score         float64 `json:"score"`
	} `json:"results"`
}

// Search posts the query and maps the result list.
func (t *Tavily) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if t.cfg.APIKey == "" || t.cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: tavily client misconfigured", domain.ErrSearch)
	}
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.cfg.APIKey,
		Query:       clipQuery(query, tavilyQueryMaxRunes),
		MaxResults:  t.cfg.MaxResults,
		SearchDepth: t.cfg.SearchDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tavily payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tavily request: %w", domain.ErrSearch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: %w: tavily %s: %s", domain.ErrSearch, domain.ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode tavily response: %w", domain.ErrSearch, err)
	}

	results := make([]domain.SearchResult, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, domain.SearchResult{
			URL:           r.URL,
			Title:         r.Title,
			Content:       r.Content,
			PublishedDate: r.PublishedDate,
		})
	}
	return results, nil
}
