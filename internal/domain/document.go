package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Document is the typed intermediate produced by the extractor and validated
// once by the recovery chain. Every list is non-nil after validation.
type Document struct {
	Article           DocArticle       `json:"article"`
	RawFacts          []DocRawFact     `json:"rawFacts"`
	TimelineItems     []DocTimeline    `json:"timelineItems"`
	Perspectives      []DocPerspective `json:"perspectives"`
	ConflictingClaims []DocConflict    `json:"conflictingClaims"`
	CitedSources      []DocSource      `json:"citedSources"`
}

// DocArticle is the article section of a Document.
type DocArticle struct {
	Title            Text  `json:"title"`
	Excerpt          Text  `json:"excerpt"`
	ExecutiveSummary Text  `json:"executiveSummary"`
	Content          Text  `json:"content"`
	Category         Text  `json:"category"`
	PublishedAt      Text  `json:"publishedAt"`
	ReadTime         Count `json:"readTime"`
	SourceCount      Count `json:"sourceCount"`
}

// DocRawFact is one extracted fact. Accepts "text" as an alias of "fact".
type DocRawFact struct {
	Category Text `json:"category"`
	Fact     Text `json:"fact"`
	Source   Text `json:"source"`
	URL      Text `json:"url,omitempty"`
}

// UnmarshalJSON tolerates the alternate field names generators emit.
func (f *DocRawFact) UnmarshalJSON(data []byte) error {
	var aux struct {
		Category Text `json:"category"`
		Fact     Text `json:"fact"`
		Text     Text `json:"text"`
		Source   Text `json:"source"`
		URL      Text `json:"url"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*f = DocRawFact{
		Category: aux.Category,
		Fact:     firstText(aux.Fact, aux.Text),
		Source:   aux.Source,
		URL:      aux.URL,
	}
	return nil
}

// DocTimeline is one timeline entry.
type DocTimeline struct {
	Date        Text `json:"date"`
	Title       Text `json:"title"`
	Description Text `json:"description"`
	Source      Text `json:"source"`
	URL         Text `json:"url,omitempty"`
}

// DocPerspective is one viewpoint. Tone, when present, decides the color.
type DocPerspective struct {
	Viewpoint   Text `json:"viewpoint"`
	Description Text `json:"description"`
	Source      Text `json:"source"`
	Quote       Text `json:"quote"`
	URL         Text `json:"url,omitempty"`
	Color       Text `json:"color,omitempty"`
	Tone        Text `json:"tone,omitempty"`
}

// UnmarshalJSON accepts publisher/stance/viewpointHeadline spellings.
func (p *DocPerspective) UnmarshalJSON(data []byte) error {
	var aux struct {
		Viewpoint         Text `json:"viewpoint"`
		ViewpointHeadline Text `json:"viewpointHeadline"`
		Description       Text `json:"description"`
		Stance            Text `json:"stance"`
		Source            Text `json:"source"`
		Publisher         Text `json:"publisher"`
		Quote             Text `json:"quote"`
		URL               Text `json:"url"`
		Color             Text `json:"color"`
		Tone              Text `json:"tone"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = DocPerspective{
		Viewpoint:   firstText(aux.Viewpoint, aux.ViewpointHeadline),
		Description: firstText(aux.Description, aux.Stance),
		Source:      firstText(aux.Source, aux.Publisher),
		Quote:       aux.Quote,
		URL:         aux.URL,
		Color:       aux.Color,
		Tone:        aux.Tone,
	}
	return nil
}

// DocConflict is a pair of opposing claims on one topic.
type DocConflict struct {
	Topic   Text     `json:"topic"`
	SourceA DocClaim `json:"sourceA"`
	SourceB DocClaim `json:"sourceB"`
}

// DocClaim is one side of a conflict.
type DocClaim struct {
	Claim  Text `json:"claim"`
	Source Text `json:"source"`
	URL    Text `json:"url,omitempty"`
}

// DocSource is a source declared by the extractor.
type DocSource struct {
	Name        Text `json:"name"`
	Type        Text `json:"type"`
	Description Text `json:"description"`
	URL         Text `json:"url,omitempty"`
}

// Text is a string that also accepts numbers, booleans, null and arrays of
// strings (joined by newlines). Objects decode to the empty string.
type Text string

// String returns the plain value.
func (t Text) String() string { return string(t) }

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case '[':
		var items []Text
		if err := json.Unmarshal(trimmed, &items); err != nil {
			*t = ""
			return nil
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				parts = append(parts, string(item))
			}
		}
		*t = Text(strings.Join(parts, "\n"))
	case '{':
		*t = ""
	default:
		*t = Text(string(trimmed))
	}
	return nil
}

// Count is a non-negative integer that also accepts floats and numeric
// prefixes of strings such as "8 min".
type Count int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	*c = 0

	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
		if end == -1 {
			end = len(s)
		}
		if n, err := strconv.Atoi(s[:end]); err == nil {
			*c = Count(n)
		}
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil
	}
	if f > 0 && f < math.MaxInt32 {
		*c = Count(int(f))
	}
	return nil
}

func firstText(values ...Text) Text {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
