package extractor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/logging"
	"ResearchReporter/internal/ports"
)

type stubGenerator struct {
	text string
	err  error
	got  ports.GenerateRequest
}

func (s *stubGenerator) Generate(_ context.Context, req ports.GenerateRequest) (string, error) {
	s.got = req
	return s.text, s.err
}

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

var results = []domain.SearchResult{
	{URL: "https://reuters.com/a", Title: "Reuters piece", Content: "snippet", Category: domain.SearchCategoryNews},
	{URL: "https://congress.gov/b", Title: "Bill text"},
	{URL: "https://reuters.com/a", Title: "duplicate"},
}

func TestExtractBuildsClosedPrompt(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{text: `{"article":{}}`}
	ex := New(gen, fixedClock{}, Options{SystemPrompt: "Be precise.", MaxTokens: 4000, Temperature: 0.1}, logging.Discard())

	scraped := []domain.ScrapedContent{{
		URL: "https://reuters.com/a", Source: "Source 1 (reuters.com)", Title: "T",
		Content: "Body", Quotes: []string{"a verbatim quote from the page"},
	}}

	res, err := ex.Extract(context.Background(), "Example Policy X", results, scraped)
	require.NoError(t, err)

	assert.Equal(t, `{"article":{}}`, res.Text)
	assert.Equal(t, []string{"https://reuters.com/a", "https://congress.gov/b"}, res.Permitted)

	req := gen.got
	assert.True(t, req.JSONOnly)
	assert.Equal(t, 4000, req.MaxTokens)
	assert.Contains(t, req.UserPrompt, "Example Policy X")
	assert.Contains(t, req.SystemPrompt, "Be precise.")
	assert.Contains(t, req.SystemPrompt, "PERMITTED URLS:\nhttps://reuters.com/a\nhttps://congress.gov/b\n")
	assert.Contains(t, req.SystemPrompt, `"a verbatim quote from the page"`)
	assert.Contains(t, req.SystemPrompt, `"sourceCount": 2`)
	assert.Contains(t, req.SystemPrompt, "2024-05-01T00:00:00Z")
	assert.Contains(t, req.SystemPrompt, "empty array []")
}

func TestExtractWrapsGeneratorErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("401 unauthorized")
	ex := New(&stubGenerator{err: cause}, fixedClock{}, Options{}, logging.Discard())

	res, err := ex.Extract(context.Background(), "q", results, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, res.Permitted, 2)
}

func TestExtractRejectsEmptyCompletion(t *testing.T) {
	t.Parallel()

	ex := New(&stubGenerator{text: "  \n"}, fixedClock{}, Options{}, logging.Discard())

	_, err := ex.Extract(context.Background(), "q", results, nil)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
