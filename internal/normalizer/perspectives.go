package normalizer

import (
	"fmt"
	"strings"

	"ResearchReporter/internal/domain"
)

const (
	placeholderSource    = "Editorial Note"
	placeholderViewpoint = "Additional Perspectives Pending"
	placeholderText      = "Too few independent sources were found to present another viewpoint on this topic."
	minPerspectives      = 2
)

func sourceIdentity(source string) string {
	return strings.ToLower(strings.TrimSpace(source))
}

// perspectiveColor prefers an explicit tone, then a valid explicit color, then blue.
func perspectiveColor(p domain.DocPerspective) domain.Color {
	if p.Tone != "" {
		return domain.Tone(p.Tone).Color()
	}
	if c, ok := domain.ParseColor(p.Color.String()); ok {
		return c
	}
	return domain.ColorBlue
}

// buildPerspectives applies source diversity across ordinary perspectives
// and folded conflicts, then pads the result to a minimum of two entries.
func (n *Normalizer) buildPerspectives(doc domain.Document, allow AllowList) []domain.Perspective {
	used := make(map[string]struct{})
	out := make([]domain.Perspective, 0, len(doc.Perspectives)+len(doc.ConflictingClaims)+1)

	claim := func(source string) bool {
		key := sourceIdentity(source)
		if _, dup := used[key]; dup {
			return false
		}
		used[key] = struct{}{}
		return true
	}

	for _, p := range doc.Perspectives {
		if !claim(p.Source.String()) {
			n.logger.Debug("perspective skipped: source already used", "source", p.Source.String(), "viewpoint", p.Viewpoint.String())
			continue
		}
		out = append(out, domain.Perspective{
			ID:          n.ids.NewID(),
			Viewpoint:   p.Viewpoint.String(),
			Description: p.Description.String(),
			Source:      p.Source.String(),
			Quote:       p.Quote.String(),
			Color:       perspectiveColor(p),
			URL:         allow.Resolve(p.URL.String()),
		})
	}

	for _, c := range doc.ConflictingClaims {
		if !claim(c.SourceA.Source.String()) {
			n.logger.Debug("conflict skipped: source already used", "source", c.SourceA.Source.String(), "topic", c.Topic.String())
			continue
		}
		out = append(out, domain.Perspective{
			ID:             n.ids.NewID(),
			Viewpoint:      c.Topic.String(),
			Description:    c.SourceA.Claim.String(),
			Source:         c.SourceA.Source.String(),
			Quote:          c.SourceA.Claim.String(),
			Color:          domain.ColorRed,
			URL:            allow.Resolve(c.SourceA.URL.String()),
			ConflictSource: c.SourceB.Source.String(),
			ConflictQuote:  c.SourceB.Claim.String(),
		})
	}

	if len(out) < minPerspectives {
		source := placeholderSource
		for i := 2; !claim(source); i++ {
			source = fmt.Sprintf("%s %d", placeholderSource, i)
		}
		out = append(out, domain.Perspective{
			ID:          n.ids.NewID(),
			Viewpoint:   placeholderViewpoint,
			Description: placeholderText,
			Source:      source,
			Color:       domain.ColorBlue,
		})
	}
	return out
}

// isPlaceholder reports whether p was synthesized by buildPerspectives.
func isPlaceholder(p domain.Perspective) bool {
	return p.Viewpoint == placeholderViewpoint && strings.HasPrefix(p.Source, placeholderSource) && p.Quote == ""
}
