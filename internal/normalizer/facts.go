package normalizer

import (
	"regexp"
	"strings"

	"ResearchReporter/internal/domain"
)

var inlineAttribution = regexp.MustCompile(`(?s)^From ([^:]+): (.+)$`)

// splitAttribution recovers "From <Source>: <text>" attributions embedded in fact text.
func splitAttribution(text, source string) (string, string) {
	if m := inlineAttribution.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[2]), strings.TrimSpace(m[1])
	}
	return text, source
}

func (n *Normalizer) groupFacts(facts []domain.DocRawFact, allow AllowList) []domain.RawFactsGroup {
	groups := make([]domain.RawFactsGroup, 0)
	index := make(map[string]int)

	for _, item := range facts {
		text, source := splitAttribution(item.Fact.String(), item.Source.String())
		if text == "" {
			continue
		}

		category := item.Category.String()
		if category == "" {
			category = domain.DefaultFactCategory
		}

		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, domain.RawFactsGroup{
				ID:       n.ids.NewID(),
				Category: category,
				Facts:    []domain.Fact{},
			})
		}

		groups[pos].Facts = append(groups[pos].Facts, domain.Fact{
			Text:   text,
			Source: source,
			URL:    allow.Resolve(item.URL.String()),
		})
	}
	return groups
}
