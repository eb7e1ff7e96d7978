package recovery

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"ResearchReporter/internal/domain"
)

var errNotObject = errors.New("top-level value is not an object")

// decodeDocument parses data as a single JSON object. Sections that have the
// wrong shape are dropped instead of failing the whole document.
func decodeDocument(data []byte) (domain.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.Document{}, errNotObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return domain.Document{}, fmt.Errorf("decode document: %w", err)
	}

	var doc domain.Document
	doc.Article = decodeArticle(fields)
	doc.RawFacts = decodeRawFacts(fields["rawFacts"])
	doc.TimelineItems = decodeList[domain.DocTimeline](section(fields, "timelineItems", "timeline"))
	doc.Perspectives = append(
		decodeList[domain.DocPerspective](fields["perspectives"]),
		decodePerspectiveGroups(fields["perspectiveGroups"])...,
	)
	doc.ConflictingClaims = decodeList[domain.DocConflict](fields["conflictingClaims"])
	doc.CitedSources = decodeList[domain.DocSource](section(fields, "citedSources", "sources"))
	return doc, nil
}

// section returns the first present key, so aliases never shadow the canonical name.
func section(fields map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, key := range keys {
		if raw, ok := fields[key]; ok {
			return raw
		}
	}
	return nil
}

func decodeArticle(fields map[string]json.RawMessage) domain.DocArticle {
	var article domain.DocArticle
	if raw, ok := fields["article"]; ok {
		if err := json.Unmarshal(raw, &article); err != nil {
			article = domain.DocArticle{}
		}
	} else if _, ok := fields["title"]; ok {
		// flat documents carry article fields at the top level
		top, _ := json.Marshal(fields)
		_ = json.Unmarshal(top, &article)
	}

	if article.ExecutiveSummary == "" {
		if raw, ok := fields["executiveSummary"]; ok {
			var summary domain.Text
			if err := json.Unmarshal(raw, &summary); err == nil {
				article.ExecutiveSummary = summary
			}
		}
	}
	return article
}

func decodeList[T any](raw json.RawMessage) []T {
	items := rawItems(raw)
	if items == nil {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}
		var value T
		if err := json.Unmarshal(item, &value); err != nil {
			continue
		}
		out = append(out, value)
	}
	return out
}

type rawFactGroup struct {
	Category domain.Text       `json:"category"`
	Facts    []json.RawMessage `json:"facts"`
}

func decodeRawFacts(raw json.RawMessage) []domain.DocRawFact {
	items := rawItems(raw)
	if items == nil {
		return nil
	}

	out := make([]domain.DocRawFact, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}

		var probe map[string]json.RawMessage
		if err := json.Unmarshal(item, &probe); err == nil {
			if _, grouped := probe["facts"]; grouped {
				var group rawFactGroup
				if err := json.Unmarshal(item, &group); err == nil {
					out = append(out, flattenFactGroup(group)...)
				}
				continue
			}
		}

		if fact, ok := decodeFact(item); ok {
			out = append(out, fact)
		}
	}
	return out
}

func flattenFactGroup(group rawFactGroup) []domain.DocRawFact {
	out := make([]domain.DocRawFact, 0, len(group.Facts))
	for _, item := range group.Facts {
		fact, ok := decodeFact(item)
		if !ok {
			continue
		}
		if fact.Category == "" {
			fact.Category = group.Category
		}
		out = append(out, fact)
	}
	return out
}

// decodeFact accepts either a fact object or a bare string.
func decodeFact(item json.RawMessage) (domain.DocRawFact, bool) {
	trimmed := bytes.TrimSpace(item)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var text domain.Text
		if err := json.Unmarshal(trimmed, &text); err != nil || text == "" {
			return domain.DocRawFact{}, false
		}
		return domain.DocRawFact{Fact: text}, true
	}

	var fact domain.DocRawFact
	if err := json.Unmarshal(trimmed, &fact); err != nil {
		return domain.DocRawFact{}, false
	}
	return fact, true
}

type perspectiveGroup struct {
	ViewpointHeadline domain.Text       `json:"viewpointHeadline"`
	Viewpoint         domain.Text       `json:"viewpoint"`
	Tone              domain.Text       `json:"tone"`
	Color             domain.Text       `json:"color"`
	Articles          []json.RawMessage `json:"articles"`
}

func decodePerspectiveGroups(raw json.RawMessage) []domain.DocPerspective {
	groups := decodeList[perspectiveGroup](raw)
	var out []domain.DocPerspective
	for _, group := range groups {
		headline := group.ViewpointHeadline
		if headline == "" {
			headline = group.Viewpoint
		}
		for _, item := range group.Articles {
			var p domain.DocPerspective
			if isNull(item) || json.Unmarshal(item, &p) != nil {
				continue
			}
			if p.Viewpoint == "" {
				p.Viewpoint = headline
			}
			if p.Tone == "" {
				p.Tone = group.Tone
			}
			if p.Color == "" {
				p.Color = group.Color
			}
			out = append(out, p)
		}
	}
	return out
}

func rawItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
