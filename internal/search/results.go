package search

import (
	"fmt"
	"net/url"
	"strings"

	"ResearchReporter/internal/domain"
)

// ValidateURL accepts absolute http(s) URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", domain.ErrInvalidURL, raw, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q: unsupported scheme", domain.ErrInvalidURL, raw)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q: missing host", domain.ErrInvalidURL, raw)
	}
	return parsed, nil
}

// Prepare drops results with invalid or repeated URLs, classifies the rest and
// keeps at most limit entries. A non-positive limit keeps everything.
func Prepare(results []domain.SearchResult, limit int) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	seen := make(map[string]struct{}, len(results))

	for _, r := range results {
		parsed, err := ValidateURL(r.URL)
		if err != nil {
			continue
		}
		r.URL = parsed.String()
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}

		r.Title = strings.TrimSpace(r.Title)
		r.Content = strings.TrimSpace(r.Content)
		if r.Category == "" {
			r.Category = Classify(parsed, r.Title+" "+r.Content)
		}
		out = append(out, r)

		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

var (
	newsDomains = []string{
		"reuters.com", "apnews.com", "bbc.", "cnn.com", "nytimes.com", "washingtonpost.com",
		"theguardian.com", "npr.org", "bloomberg.com", "politico.com", "axios.com", "wsj.com",
	}
	businessDomains = []string{"forbes.com", "cnbc.com", "ft.com", "marketwatch.com", "businessinsider.com", "economist.com"}
	expertDomains   = []string{"brookings.edu", "rand.org", "cfr.org", "heritage.org", "urban.org", "pewresearch.org", "cato.org"}

	criticismWords = []string{"criticize", "criticism", "oppose", "opposition", "against", "concern", "backlash", "controversy"}
	supportWords   = []string{"support", "praise", "endorse", "benefit", "welcome", "champion"}
	expertWords    = []string{"analysis", "expert", "study", "research", "report finds", "economist"}
)

// Classify assigns an advisory category from the URL domain and text keywords.
func Classify(u *url.URL, text string) domain.SearchCategory {
	host := strings.ToLower(u.Hostname())
	lower := strings.ToLower(text)

	switch {
	case strings.HasSuffix(host, ".gov") || strings.Contains(host, ".gov.") || strings.HasSuffix(host, ".mil"):
		return domain.SearchCategoryGovernment
	case strings.HasSuffix(host, ".edu") && !containsAny(host, expertDomains):
		return domain.SearchCategoryAcademic
	case containsAny(host, []string{"arxiv.org", "scholar.", "jstor.org", "nature.com", "sciencedirect.com"}):
		return domain.SearchCategoryAcademic
	case containsAny(host, expertDomains):
		return domain.SearchCategoryExpert
	case containsAny(host, businessDomains):
		return domain.SearchCategoryBusiness
	case containsAny(lower, criticismWords):
		return domain.SearchCategoryCriticism
	case containsAny(lower, supportWords):
		return domain.SearchCategorySupport
	case containsAny(host, newsDomains):
		return domain.SearchCategoryNews
	case containsAny(lower, expertWords):
		return domain.SearchCategoryExpert
	default:
		return domain.SearchCategoryOther
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
