package normalizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/logging"
)

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%d", s.n.Add(1)) }

type recordingImages struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *recordingImages) Resolve(_ context.Context, topic string, index int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[topic] = index
	return fmt.Sprintf("https://img.example/%s/%d", strings.ReplaceAll(topic, " ", "+"), index)
}

func newTestNormalizer() (*Normalizer, *recordingImages) {
	images := &recordingImages{}
	return New(images, &seqIDs{}, logging.Discard()), images
}

var allowed = NewAllowList([]string{
	"https://reuters.com/a",
	"https://apnews.com/b",
	"https://nasa.gov/c",
})

func TestScenarioDuplicatePerspectiveSourceGetsPlaceholder(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		Perspectives: []domain.DocPerspective{
			{Viewpoint: "Support", Source: "Reuters", Quote: "a", Tone: "supportive", URL: "https://reuters.com/a"},
			{Viewpoint: "Critique", Source: "Reuters", Quote: "b", Tone: "critical"},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.Perspectives, 2)
	assert.Equal(t, "Reuters", out.Perspectives[0].Source)
	assert.Equal(t, domain.ColorGreen, out.Perspectives[0].Color)
	assert.Equal(t, "https://reuters.com/a", out.Perspectives[0].URL)
	assert.True(t, isPlaceholder(out.Perspectives[1]))
	assert.Equal(t, domain.ColorBlue, out.Perspectives[1].Color)
}

func TestInlineAttributionIsSplit(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		RawFacts: []domain.DocRawFact{
			{Fact: "From NASA: Launch succeeded"},
			{Category: "Budget", Fact: "Costs rose", Source: "CBO"},
			{Fact: "   "},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.RawFacts, 2)
	assert.Equal(t, domain.DefaultFactCategory, out.RawFacts[0].Category)
	assert.Equal(t, []domain.Fact{{Text: "Launch succeeded", Source: "NASA"}}, out.RawFacts[0].Facts)
	assert.Equal(t, "Budget", out.RawFacts[1].Category)
	assert.Equal(t, "CBO", out.RawFacts[1].Facts[0].Source)
}

func TestConflictsFoldIntoRedPerspectives(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		Perspectives: []domain.DocPerspective{
			{Viewpoint: "Neutral", Source: "AP", Color: "purple"},
		},
		ConflictingClaims: []domain.DocConflict{
			{
				Topic:   "Cost",
				SourceA: domain.DocClaim{Claim: "Too expensive", Source: "CBO", URL: "https://nasa.gov/c"},
				SourceB: domain.DocClaim{Claim: "Pays for itself", Source: "White House"},
			},
			{
				Topic:   "Jobs",
				SourceA: domain.DocClaim{Claim: "Dup", Source: "ap"},
				SourceB: domain.DocClaim{Claim: "x", Source: "y"},
			},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.Perspectives, 2)
	assert.Equal(t, domain.ColorPurple, out.Perspectives[0].Color)

	conflict := out.Perspectives[1]
	assert.True(t, conflict.IsConflict())
	assert.Equal(t, "Cost", conflict.Viewpoint)
	assert.Equal(t, "CBO", conflict.Source)
	assert.Equal(t, "Too expensive", conflict.Quote)
	assert.Equal(t, domain.ColorRed, conflict.Color)
	assert.Equal(t, "White House", conflict.ConflictSource)
	assert.Equal(t, "Pays for itself", conflict.ConflictQuote)
	assert.Equal(t, "https://nasa.gov/c", conflict.URL)
}

func TestNoDuplicatePerspectiveSources(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		Perspectives: []domain.DocPerspective{
			{Source: "BBC"}, {Source: " bbc "}, {Source: ""}, {Source: ""}, {Source: "Editorial Note"},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	seen := map[string]bool{}
	for _, p := range out.Perspectives {
		key := sourceIdentity(p.Source)
		assert.False(t, seen[key], "duplicate source %q", p.Source)
		seen[key] = true
	}
	assert.Len(t, out.Perspectives, 3)
}

func TestPlaceholderAvoidsUsedSource(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		Perspectives: []domain.DocPerspective{{Source: "Editorial Note"}},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.Perspectives, 2)
	assert.Equal(t, "Editorial Note 2", out.Perspectives[1].Source)
}

func TestURLsOutsideAllowListAreDropped(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		RawFacts: []domain.DocRawFact{
			{Fact: "a", Source: "Reuters", URL: "https://reuters.com/a/"},
			{Fact: "b", Source: "Fake", URL: "https://invented.example/x"},
		},
		TimelineItems: []domain.DocTimeline{
			{Title: "t", Source: "AP", URL: "https://elsewhere.example"},
		},
		Perspectives: []domain.DocPerspective{
			{Source: "AP", URL: "https://apnews.com/b"},
			{Source: "Blog", URL: "https://blog.example"},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	assert.Equal(t, "https://reuters.com/a", out.RawFacts[0].Facts[0].URL)
	assert.Empty(t, out.RawFacts[0].Facts[1].URL)
	assert.Empty(t, out.Timeline[0].SourceURL)
	for _, p := range out.Perspectives {
		if p.URL != "" {
			assert.NotEmpty(t, allowed.Resolve(p.URL))
		}
	}
	for _, s := range out.CitedSources {
		if s.URL != "" {
			assert.Equal(t, s.URL, allowed.Resolve(s.URL))
		}
	}
}

func TestSourceScanOrderAndFirstWins(t *testing.T) {
	t.Parallel()

	n, images := newTestNormalizer()
	doc := domain.Document{
		RawFacts: []domain.DocRawFact{
			{Fact: "From Reuters: " + strings.Repeat("x", 80), URL: "https://reuters.com/a"},
			{Fact: "second", Source: "Reuters wire", URL: "https://reuters.com/a"},
		},
		Perspectives: []domain.DocPerspective{
			{Viewpoint: "Skeptic", Source: "AP", URL: "https://apnews.com/b"},
		},
		TimelineItems: []domain.DocTimeline{
			{Title: "Launch", Source: "NASA"},
			{Title: "Unlabeled"},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.CitedSources, 3)

	first := out.CitedSources[0]
	assert.Equal(t, "Reuters", first.Name)
	assert.Equal(t, domain.SourceTypePrimary, first.Type)
	assert.Equal(t, `Source cited for: "`+strings.Repeat("x", 50)+`..."`, first.Description)

	assert.Equal(t, "AP", out.CitedSources[1].Name)
	assert.Equal(t, domain.SourceTypeAnalysis, out.CitedSources[1].Type)
	assert.Equal(t, `Source for perspective: "Skeptic"`, out.CitedSources[1].Description)

	assert.Equal(t, "NASA", out.CitedSources[2].Name)
	assert.Equal(t, domain.SourceTypeTimeline, out.CitedSources[2].Type)
	assert.Equal(t, `Source for: "Launch"`, out.CitedSources[2].Description)

	assert.Equal(t, "https://img.example/Reuters/10", first.ImageURL)
	assert.Equal(t, 12, images.calls["NASA"])
	assert.NotContains(t, images.calls, placeholderSource)
}

func TestDeclaredSourcesShortCircuitScan(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		RawFacts: []domain.DocRawFact{{Fact: "a", Source: "Scanned"}},
		CitedSources: []domain.DocSource{
			{Name: "NASA", Description: "Agency", URL: "https://nasa.gov/c"},
			{Name: "NASA duplicate", URL: "https://nasa.gov/c"},
			{Name: "", URL: "https://invented.example"},
			{Name: "Congress", Type: "Legislation"},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.CitedSources, 2)
	assert.Equal(t, "NASA", out.CitedSources[0].Name)
	assert.Equal(t, domain.SourceTypePrimary, out.CitedSources[0].Type)
	assert.Equal(t, "Congress", out.CitedSources[1].Name)
	assert.Equal(t, "Legislation", out.CitedSources[1].Type)
}

func TestNormalizeIsIdempotentOnSources(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		RawFacts: []domain.DocRawFact{
			{Fact: "From NASA: one"}, {Fact: "two", Source: "ESA"}, {Fact: "three", Source: "NASA"},
		},
		Perspectives: []domain.DocPerspective{{Source: "AP"}, {Source: "BBC"}},
	}

	keys := func(sources []domain.CitedSource) []string {
		out := make([]string, 0, len(sources))
		for _, s := range sources {
			out = append(out, s.Key())
		}
		return out
	}

	first := n.Normalize(context.Background(), doc, allowed)
	second := n.Normalize(context.Background(), doc, allowed)

	assert.Equal(t, keys(first.CitedSources), keys(second.CitedSources))
	assert.Equal(t, []string{"NASA", "ESA", "AP", "BBC"}, keys(first.CitedSources))
}

func TestTimelineKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	n, _ := newTestNormalizer()
	doc := domain.Document{
		TimelineItems: []domain.DocTimeline{
			{Date: "2024-03-01", Title: "later"},
			{Date: "2023-01-01", Title: "earlier"},
		},
	}

	out := n.Normalize(context.Background(), doc, allowed)

	require.Len(t, out.Timeline, 2)
	assert.Equal(t, "later", out.Timeline[0].Title)
	assert.Equal(t, "Source", out.Timeline[0].SourceLabel)
	assert.Equal(t, "event", out.Timeline[0].Type)
}
