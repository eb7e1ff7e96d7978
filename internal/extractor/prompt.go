package extractor

import (
	"fmt"
	"strings"

	"ResearchReporter/internal/domain"
)

const (
	promptContentRunes = 1000
	unknown            = "Unknown"
)

const documentSchema = `{
  "article": {
    "title": "Clear, factual title based on search results",
    "excerpt": "Brief summary of the research findings",
    "executiveSummary": "• Key finding 1\n• Key finding 2\n• Key finding 3",
    "content": "Comprehensive article with all research findings",
    "category": "Research",
    "publishedAt": "%s",
    "readTime": 8,
    "sourceCount": %d
  },
  "rawFacts": [
    {"category": "Primary Sources", "fact": "From [Source Name]: [exact quote or fact]", "source": "Source Name", "url": "one of the permitted URLs"}
  ],
  "timelineItems": [
    {"date": "YYYY-MM-DD", "title": "Event title", "description": "Event details", "source": "Source name", "url": "one of the permitted URLs"}
  ],
  "perspectives": [
    {"viewpoint": "Viewpoint label", "description": "Summary of the stance", "source": "Source name", "quote": "Exact quote from the source", "url": "one of the permitted URLs", "tone": "supportive | critical | neutral", "color": "green | red | blue | purple"}
  ],
  "conflictingClaims": [
    {"topic": "Issue being debated",
     "sourceA": {"claim": "Claim from source A", "source": "Source A name", "url": "one of the permitted URLs"},
     "sourceB": {"claim": "Opposing claim from source B", "source": "Source B name", "url": "one of the permitted URLs"}}
  ],
  "citedSources": [
    {"name": "Source organization name", "type": "Primary Source", "description": "Description of the source", "url": "one of the permitted URLs"}
  ]
}`

const rules = `RULES:
1. Return ONLY one JSON object with exactly the structure above. No markdown, no commentary.
2. Every "url" value MUST be copied from the PERMITTED URLS list. Never invent a URL.
3. Quotes MUST be verbatim text from the scraped quotes or content below.
4. Raw facts start with "From [Source]: " and come from primary material where possible.
5. Tone is supportive, critical or neutral. Color is green for supportive, red for critical, blue for neutral, purple otherwise.
6. Use a different source for each perspective.
7. If no real source supports a section, emit an empty array [] for it. Never fabricate titles, outlets, quotes or URLs.
8. The executive summary has 3-5 points, each starting with "• " on its own line.`

// buildSystemPrompt renders the extraction instructions for query.
func buildSystemPrompt(base, query string, results []domain.SearchResult, scraped []domain.ScrapedContent, permitted []string, generatedAt string) string {
	var b strings.Builder

	if base = strings.TrimSpace(base); base != "" {
		b.WriteString(base)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "TASK: Create a detailed, non-partisan research report on: %s\n\n", query)

	b.WriteString("SEARCH RESULTS:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n   URL: %s\n   Category: %s\n   Content: %s\n   Published: %s\n",
			i+1, orDefault(r.Title, "No title"), r.URL, orDefault(string(r.Category), string(domain.SearchCategoryOther)),
			orDefault(r.Content, "No content"), orDefault(r.PublishedDate, unknown))
	}

	b.WriteString("\nPERMITTED URLS:\n")
	for _, u := range permitted {
		b.WriteString(u)
		b.WriteByte('\n')
	}

	b.WriteString("\nSCRAPED CONTENT:\n")
	if len(scraped) == 0 {
		b.WriteString("(none)\n")
	}
	for i, c := range scraped {
		fmt.Fprintf(&b, "\nSOURCE %d: %s\nURL: %s\nTITLE: %s\nAUTHOR: %s\nPUBLISHED: %s\nCONTENT: %s\nQUOTES:\n",
			i+1, c.Source, c.URL, c.Title, orDefault(c.Author, unknown), orDefault(c.PublishedDate, unknown),
			clipRunes(c.Content, promptContentRunes))
		for _, q := range c.Quotes {
			fmt.Fprintf(&b, "• %q\n", q)
		}
	}

	b.WriteString("\nREQUIRED JSON STRUCTURE:\n")
	fmt.Fprintf(&b, documentSchema, generatedAt, len(permitted))
	b.WriteString("\n\n")
	b.WriteString(rules)
	return b.String()
}

func buildUserPrompt(query string) string {
	return fmt.Sprintf("Research and create a comprehensive report about: %s", query)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func clipRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
