package normalizer

import (
	"fmt"
	"net/url"
	"strings"

	"ResearchReporter/internal/domain"
)

const factExcerptRunes = 50

type sourceCandidate struct {
	name        string
	kind        string
	description string
	url         string
}

// sourceSet keeps the first candidate seen per canonical key.
type sourceSet struct {
	seen  map[string]struct{}
	items []sourceCandidate
}

func newSourceSet() *sourceSet {
	return &sourceSet{seen: make(map[string]struct{})}
}

func (s *sourceSet) add(c sourceCandidate) {
	c.name = strings.TrimSpace(c.name)
	if c.name == "" && c.url != "" {
		c.name = hostOf(c.url)
	}
	key := domain.SourceKey(c.url, c.name)
	if key == "" {
		return
	}
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, c)
}

// collectSources returns declared sources when present, otherwise scans
// facts, retained perspectives and timeline items in that order.
func collectSources(doc domain.Document, facts []domain.RawFactsGroup, perspectives []domain.Perspective, timeline []domain.TimelineItem, allow AllowList) []sourceCandidate {
	declared := newSourceSet()
	for _, s := range doc.CitedSources {
		kind := s.Type.String()
		if kind == "" {
			kind = domain.SourceTypePrimary
		}
		declared.add(sourceCandidate{
			name:        s.Name.String(),
			kind:        kind,
			description: s.Description.String(),
			url:         allow.Resolve(s.URL.String()),
		})
	}
	if len(declared.items) > 0 {
		return declared.items
	}

	scanned := newSourceSet()
	for _, group := range facts {
		for _, fact := range group.Facts {
			if fact.Source == "" {
				continue
			}
			scanned.add(sourceCandidate{
				name:        fact.Source,
				kind:        domain.SourceTypePrimary,
				description: fmt.Sprintf(`Source cited for: "%s..."`, truncateRunes(fact.Text, factExcerptRunes)),
				url:         fact.URL,
			})
		}
	}

	for _, p := range perspectives {
		if isPlaceholder(p) {
			continue
		}
		if p.Source != "" {
			scanned.add(sourceCandidate{
				name:        p.Source,
				kind:        domain.SourceTypeAnalysis,
				description: fmt.Sprintf(`Source for perspective: "%s"`, p.Viewpoint),
				url:         p.URL,
			})
		}
		if p.ConflictSource != "" {
			scanned.add(sourceCandidate{
				name:        p.ConflictSource,
				kind:        domain.SourceTypeAnalysis,
				description: fmt.Sprintf(`Source for perspective: "%s"`, p.Viewpoint),
			})
		}
	}

	for _, item := range timeline {
		if item.SourceLabel == "" || item.SourceLabel == defaultTimelineLabel {
			continue
		}
		scanned.add(sourceCandidate{
			name:        item.SourceLabel,
			kind:        domain.SourceTypeTimeline,
			description: fmt.Sprintf(`Source for: "%s"`, item.Title),
			url:         item.SourceURL,
		})
	}
	return scanned.items
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
