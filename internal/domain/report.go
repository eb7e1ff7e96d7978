package domain

import "time"

// Category values stamped on assembled articles.
const (
	CategoryResearch = "Research"
	CategoryError    = "Error"
)

// Source type tags assigned while collecting cited sources.
const (
	SourceTypePrimary  = "Primary Source"
	SourceTypeAnalysis = "News Analysis"
	SourceTypeTimeline = "Timeline Reference"
)

// DefaultFactCategory groups raw facts that arrive without a category.
const DefaultFactCategory = "General"

// Report is the root aggregate returned for a single research query.
type Report struct {
	Article          Article          `json:"article"`
	ExecutiveSummary ExecutiveSummary `json:"executiveSummary"`
	TimelineItems    []TimelineItem   `json:"timelineItems"`
	CitedSources     []CitedSource    `json:"citedSources"`
	RawFacts         []RawFactsGroup  `json:"rawFacts"`
	Perspectives     []Perspective    `json:"perspectives"`
}

// Failed reports whether the report represents a pipeline failure.
func (r Report) Failed() bool {
	return r.Article.Category == CategoryError
}

// Article carries the headline content of a report.
type Article struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	PublishedAt  time.Time `json:"publishedAt"`
	ReadTime     int       `json:"readTime"`
	SourceCount  int       `json:"sourceCount"`
	HeroImageURL string    `json:"heroImageUrl"`
	AuthorName   string    `json:"authorName"`
	AuthorTitle  string    `json:"authorTitle"`
}

// ExecutiveSummary is an ordered list of plain-text bullet points.
type ExecutiveSummary struct {
	ID        string   `json:"id"`
	ArticleID string   `json:"articleId"`
	Points    []string `json:"points"`
}

// TimelineItem is a dated event in extractor order.
type TimelineItem struct {
	ID          string `json:"id"`
	ArticleID   string `json:"articleId"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	SourceLabel string `json:"sourceLabel"`
	SourceURL   string `json:"sourceUrl,omitempty"`
}

// CitedSource is a deduplicated reference keyed by URL, or by name when no URL is known.
type CitedSource struct {
	ID          string `json:"id"`
	ArticleID   string `json:"articleId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	ImageURL    string `json:"imageUrl"`
}

// Key returns the canonical identity used for deduplication.
func (s CitedSource) Key() string {
	return SourceKey(s.URL, s.Name)
}

// SourceKey is the URL when present, the name otherwise.
func SourceKey(url, name string) string {
	if url != "" {
		return url
	}
	return name
}

// RawFactsGroup holds the facts of one category.
type RawFactsGroup struct {
	ID        string `json:"id"`
	ArticleID string `json:"articleId"`
	Category  string `json:"category"`
	Facts     []Fact `json:"facts"`
}

// Fact is a single attributed statement.
type Fact struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

// Perspective is a labeled viewpoint, optionally paired with an opposing claim.
type Perspective struct {
	ID             string `json:"id"`
	ArticleID      string `json:"articleId"`
	Viewpoint      string `json:"viewpoint"`
	Description    string `json:"description"`
	Source         string `json:"source"`
	Quote          string `json:"quote"`
	Color          Color  `json:"color"`
	URL            string `json:"url,omitempty"`
	ConflictSource string `json:"conflictSource,omitempty"`
	ConflictQuote  string `json:"conflictQuote,omitempty"`
}

// IsConflict reports whether the perspective was folded from a conflicting-claims pair.
func (p Perspective) IsConflict() bool {
	return p.ConflictSource != "" || p.ConflictQuote != ""
}
