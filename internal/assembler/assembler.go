// Package assembler builds the final Report aggregate.
package assembler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/normalizer"
	"ResearchReporter/internal/ports"
)

const (
	// AuthorName is the byline name on every assembled article.
	AuthorName = "Research Desk"
	// AuthorTitle is the byline title on every assembled article.
	AuthorTitle = "AI Research Analyst"
)

const (
	maxTitleWidth   = 200
	maxExcerptWidth = 300

	noSummary      = "No executive summary available."
	failureExcerpt = "Research report generation failed due to technical issues."
)

// Draft is everything the assembler needs from earlier stages.
type Draft struct {
	Query    string
	Document domain.Document
	Entities normalizer.Normalized
	// AllowedURLs is the size of the citation allow-list; it bounds a declared source count.
	AllowedURLs int
}

// Assembler turns drafts into reports. It never fails.
type Assembler struct {
	ids    ports.IDGenerator
	clock  ports.Clock
	images ports.ImageResolver
	logger *slog.Logger
}

// New creates an assembler. images may be nil; the hero image is then left empty.
func New(ids ports.IDGenerator, clock ports.Clock, images ports.ImageResolver, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		ids:    ids,
		clock:  clock,
		images: images,
		logger: logger.With("component", "assembler"),
	}
}

// Assemble combines the document and its normalized entities into a Report.
// Every child record carries the same article ID.
func (a *Assembler) Assemble(ctx context.Context, d Draft) domain.Report {
	generatedAt := a.clock.Now()
	articleID := a.ids.NewID()

	doc := d.Document.Article
	title := Clip(doc.Title.String(), maxTitleWidth)
	if title == "" {
		title = fmt.Sprintf("Research Report: %s", d.Query)
	}

	excerpt := Clip(doc.Excerpt.String(), maxExcerptWidth)
	if excerpt == "" {
		excerpt = title
	}

	category := strings.TrimSpace(doc.Category.String())
	if category == "" || strings.EqualFold(category, domain.CategoryError) {
		category = domain.CategoryResearch
	}

	readTime := int(doc.ReadTime)
	if readTime <= 0 {
		readTime = ReadTime(doc.Content.String())
	}

	var hero string
	if a.images != nil {
		hero = a.images.Resolve(ctx, title, 0)
	}

	report := domain.Report{
		Article: domain.Article{
			ID:           articleID,
			Slug:         Slugify(title),
			Title:        title,
			Excerpt:      excerpt,
			Content:      doc.Content.String(),
			Category:     category,
			PublishedAt:  generatedAt,
			ReadTime:     readTime,
			SourceCount:  sourceCount(int(doc.SourceCount), len(d.Entities.CitedSources), d.AllowedURLs),
			HeroImageURL: hero,
			AuthorName:   AuthorName,
			AuthorTitle:  AuthorTitle,
		},
		ExecutiveSummary: domain.ExecutiveSummary{
			ID:        a.ids.NewID(),
			ArticleID: articleID,
			Points:    SplitSummary(doc.ExecutiveSummary.String()),
		},
		TimelineItems: nonNil(d.Entities.Timeline),
		CitedSources:  nonNil(d.Entities.CitedSources),
		RawFacts:      nonNil(d.Entities.RawFacts),
		Perspectives:  nonNil(d.Entities.Perspectives),
	}
	stamp(&report, articleID)

	a.logger.Debug("report assembled",
		"slug", report.Article.Slug,
		"sources", report.Article.SourceCount,
		"perspectives", len(report.Perspectives),
	)
	return report
}

// Fallback builds the error report returned when generation cannot complete.
func (a *Assembler) Fallback(query, reason string) domain.Report {
	articleID := a.ids.NewID()
	title := fmt.Sprintf("Research Report: %s", query)

	report := domain.Report{
		Article: domain.Article{
			ID:    articleID,
			Slug:  Slugify(title),
			Title: title,
			Content: fmt.Sprintf(
				"Unable to generate comprehensive research report due to technical issues: %s. Please try again later.",
				strings.TrimSuffix(strings.TrimSpace(reason), "."),
			),
			Excerpt:     failureExcerpt,
			Category:    domain.CategoryError,
			PublishedAt: a.clock.Now(),
			ReadTime:    1,
			AuthorName:  AuthorName,
			AuthorTitle: AuthorTitle,
		},
		ExecutiveSummary: domain.ExecutiveSummary{
			ID:        a.ids.NewID(),
			ArticleID: articleID,
			Points:    []string{failureExcerpt},
		},
		TimelineItems: []domain.TimelineItem{},
		CitedSources:  []domain.CitedSource{},
		RawFacts:      []domain.RawFactsGroup{},
		Perspectives:  []domain.Perspective{},
	}
	return report
}

// sourceCount trusts a declared count only when it is positive and no larger
// than the number of URLs the extractor was allowed to cite.
func sourceCount(declared, retained, allowed int) int {
	if declared > 0 && declared <= allowed {
		return declared
	}
	return retained
}

func stamp(r *domain.Report, articleID string) {
	for i := range r.TimelineItems {
		r.TimelineItems[i].ArticleID = articleID
	}
	for i := range r.CitedSources {
		r.CitedSources[i].ArticleID = articleID
	}
	for i := range r.RawFacts {
		r.RawFacts[i].ArticleID = articleID
	}
	for i := range r.Perspectives {
		r.Perspectives[i].ArticleID = articleID
	}
}

func nonNil[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
