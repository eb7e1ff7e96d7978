// Package recovery turns untrusted generator output into a validated Document.
package recovery

import (
	"errors"
	"fmt"
	"strings"

	"ResearchReporter/internal/domain"
)

// ErrNoObject is returned when no JSON object boundaries are present.
var ErrNoObject = errors.New("no json object found")

// StrategyMinimal names the synthesized document used when every parse fails.
const StrategyMinimal = "minimal"

// Strategy is one recovery attempt. Strategies are pure and tried in order.
type Strategy struct {
	Name string
	Fn   func(text string) (domain.Document, error)
}

// Outcome reports which strategy produced the document.
type Outcome struct {
	Strategy string
	Attempts []Attempt
}

// Fallback reports whether the minimal document was synthesized.
func (o Outcome) Fallback() bool {
	return o.Strategy == StrategyMinimal
}

// Attempt records a failed strategy for logging.
type Attempt struct {
	Strategy string
	Err      error
}

// Chain is an ordered list of strategies with first-success semantics.
type Chain struct {
	strategies []Strategy
}

// NewChain builds the default chain: direct, unfence, braces, repair.
func NewChain() *Chain {
	return &Chain{strategies: DefaultStrategies()}
}

// DefaultStrategies returns the parse strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "direct", Fn: parseDirect},
		{Name: "unfence", Fn: parseUnfenced},
		{Name: "braces", Fn: parseBraces},
		{Name: "repair", Fn: parseRepaired},
	}
}

// Recover runs the chain over text. The returned document always passes Validate.
func (c *Chain) Recover(text, query string) (domain.Document, Outcome) {
	var outcome Outcome
	for _, strategy := range c.strategies {
		doc, err := strategy.Fn(text)
		if err != nil {
			outcome.Attempts = append(outcome.Attempts, Attempt{Strategy: strategy.Name, Err: err})
			continue
		}
		outcome.Strategy = strategy.Name
		return Validate(doc, query), outcome
	}

	outcome.Strategy = StrategyMinimal
	return Validate(Minimal(query), query), outcome
}

// Recover runs the default chain.
func Recover(text, query string) (domain.Document, Outcome) {
	return NewChain().Recover(text, query)
}

func parseDirect(text string) (domain.Document, error) {
	return decodeDocument([]byte(text))
}

func parseUnfenced(text string) (domain.Document, error) {
	return decodeDocument([]byte(stripFences(text)))
}

func parseBraces(text string) (domain.Document, error) {
	extracted, err := extractObject(text)
	if err != nil {
		return domain.Document{}, err
	}
	return decodeDocument([]byte(extracted))
}

func parseRepaired(text string) (domain.Document, error) {
	candidate := stripFences(text)
	if extracted, err := extractObject(candidate); err == nil {
		candidate = extracted
	}
	return decodeDocument([]byte(repair(candidate)))
}

func stripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	cleaned = strings.TrimPrefix(cleaned, "```")
	if nl := strings.IndexByte(cleaned, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		if tag := strings.TrimSpace(cleaned[:nl]); !strings.ContainsAny(tag, "{[") {
			cleaned = cleaned[nl+1:]
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

func extractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end <= start {
		return "", ErrNoObject
	}
	return text[start : end+1], nil
}

// Validate fills required article text from the query and guarantees every list is non-nil.
func Validate(doc domain.Document, query string) domain.Document {
	if strings.TrimSpace(doc.Article.Title.String()) == "" {
		doc.Article.Title = domain.Text(fmt.Sprintf("Research Report: %s", query))
	}
	if strings.TrimSpace(doc.Article.Content.String()) == "" {
		doc.Article.Content = domain.Text(fmt.Sprintf("Research report on: %s", query))
	}
	if strings.TrimSpace(doc.Article.Excerpt.String()) == "" {
		doc.Article.Excerpt = domain.Text(fmt.Sprintf("Research findings about %s", query))
	}

	if doc.RawFacts == nil {
		doc.RawFacts = []domain.DocRawFact{}
	}
	if doc.TimelineItems == nil {
		doc.TimelineItems = []domain.DocTimeline{}
	}
	if doc.Perspectives == nil {
		doc.Perspectives = []domain.DocPerspective{}
	}
	if doc.ConflictingClaims == nil {
		doc.ConflictingClaims = []domain.DocConflict{}
	}
	if doc.CitedSources == nil {
		doc.CitedSources = []domain.DocSource{}
	}
	return doc
}

// Minimal synthesizes an empty document for query.
func Minimal(query string) domain.Document {
	return domain.Document{
		Article: domain.DocArticle{
			Title:    domain.Text(fmt.Sprintf("Research Report: %s", query)),
			Excerpt:  domain.Text(fmt.Sprintf("Research findings about %s", query)),
			Content:  "Unable to generate comprehensive research report due to technical issues. Please try again later.",
			Category: domain.CategoryResearch,
			ReadTime: 1,
		},
		RawFacts:          []domain.DocRawFact{},
		TimelineItems:     []domain.DocTimeline{},
		Perspectives:      []domain.DocPerspective{},
		ConflictingClaims: []domain.DocConflict{},
		CitedSources:      []domain.DocSource{},
	}
}
