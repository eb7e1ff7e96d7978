package images

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ResearchReporter/internal/ports"
)

const (
	defaultEndpoint = "https://api.pexels.com/v1"
	placeholderBase = "https://via.placeholder.com/800x400/1e40af/white?text="
	perPage         = 10
)

var errNoAPIKey = errors.New("pexels api key is not configured")

var (
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// topicMappings rewrite news topics into terms that return usable stock photos.
// Checked in order; the first substring match wins.
var topicMappings = []struct{ key, query string }{
	{"supreme court", "supreme court building justice"},
	{"border control", "border fence immigration"},
	{"immigration", "immigration border policy"},
	{"inflation", "economy money finance"},
	{"healthcare", "hospital medical healthcare"},
	{"congress", "capitol building congress"},
	{"senate", "senate chamber government"},
	{"house", "house representatives capitol"},
	{"election", "voting ballot election"},
	{"economy", "business finance economy"},
	{"trade", "shipping containers trade"},
	{"tariffs", "trade commerce economics"},
	{"tax", "money taxes finance"},
	{"budget", "government budget finance"},
	{"defense", "military defense pentagon"},
	{"security", "security government building"},
}

var politicalKeywords = []string{
	"trump", "biden", "president", "white house", "administration",
	"republican", "democrat", "party", "campaign", "vote", "legislation",
	"bill", "law", "policy", "regulation", "federal", "state", "government",
}

// Pexels resolves topic images through the Pexels search API.
type Pexels struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ ports.ImageResolver = (*Pexels)(nil)

// NewPexels creates a resolver. perMinute <= 0 disables throttling.
func NewPexels(endpoint, apiKey string, perMinute int, client *http.Client, logger *slog.Logger) *Pexels {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	var limiter *rate.Limiter
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return &Pexels{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		client:   client,
		limiter:  limiter,
		logger:   logger,
	}
}

// Resolve returns photos[index % n].src.large, or a placeholder on any failure.
func (p *Pexels) Resolve(ctx context.Context, topic string, index int) string {
	photo, err := p.Lookup(ctx, topic, index)
	if err != nil {
		return Placeholder(topic)
	}
	return photo
}

// Lookup is Resolve without the placeholder: failures are returned as errors.
func (p *Pexels) Lookup(ctx context.Context, topic string, index int) (string, error) {
	if p.apiKey == "" {
		return "", errNoAPIKey
	}

	photo, err := p.search(ctx, enhanceQuery(topic), index)
	if err != nil {
		p.logger.Warn("image lookup failed", "topic", topic, "error", err)
		return "", err
	}
	return photo, nil
}

type pexelsResponse struct {
	Photos []struct {
		Src struct {
			Large string `json:"large"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *Pexels) search(ctx context.Context, query string, index int) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for rate limiter: %w", err)
		}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprint(perPage))
	params.Set("orientation", "landscape")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"/search?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request photos: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pexels returned %s", resp.Status)
	}

	var payload pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode photos: %w", err)
	}
	if len(payload.Photos) == 0 {
		return "", fmt.Errorf("no photos for %q", query)
	}

	if index < 0 {
		index = -index
	}
	photo := payload.Photos[index%len(payload.Photos)].Src.Large
	if photo == "" {
		return "", fmt.Errorf("photo without large source for %q", query)
	}
	return photo, nil
}

func enhanceQuery(topic string) string {
	lower := strings.ToLower(topic)
	for _, m := range topicMappings {
		if strings.Contains(lower, m.key) {
			return m.query
		}
	}
	for _, kw := range politicalKeywords {
		if strings.Contains(lower, kw) {
			return topic + " government politics"
		}
	}
	return topic
}

// Placeholder builds the fallback image URL for topic.
func Placeholder(topic string) string {
	clean := nonAlnum.ReplaceAllString(topic, "")
	clean = whitespace.ReplaceAllString(strings.TrimSpace(clean), "+")
	return placeholderBase + clean
}
