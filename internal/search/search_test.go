package search

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchReporter/internal/domain"
)

type fakeProvider struct {
	name  string
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(context.Context, string) ([]domain.SearchResult, error) {
	f.calls++
	return []domain.SearchResult{{URL: "https://example.com"}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register(&fakeProvider{name: "tavily"})
	r.Register(&fakeProvider{name: "feed"})

	p, err := r.Resolve("tavily")
	require.NoError(t, err)
	assert.Equal(t, "tavily", p.Name())
	assert.Equal(t, []string{"feed", "tavily"}, r.Names())

	_, err = r.Resolve("bing")
	assert.EqualError(t, err, "search provider bing is not registered")
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"https://reuters.com/a", " http://example.com/path?q=1 "} {
		_, err := ValidateURL(ok)
		assert.NoError(t, err, ok)
	}
	for _, bad := range []string{"", "not a url", "ftp://example.com", "/relative/path", "https://", "javascript:alert(1)"} {
		_, err := ValidateURL(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidURL, bad)
	}
}

func TestPrepareDropsInvalidAndBounds(t *testing.T) {
	t.Parallel()

	in := []domain.SearchResult{
		{URL: "not a url", Title: "bad"},
		{URL: "https://www.whitehouse.gov/briefing", Title: " Briefing "},
		{URL: "https://www.whitehouse.gov/briefing", Title: "dup"},
		{URL: "https://reuters.com/world", Title: "Lawmakers criticize plan"},
		{URL: "https://example.org/post", Title: "Groups praise the bill"},
		{URL: "https://www.reuters.com/markets", Title: "Markets steady"},
	}

	out := Prepare(in, 3)

	require.Len(t, out, 3)
	assert.Equal(t, "Briefing", out[0].Title)
	assert.Equal(t, domain.SearchCategoryGovernment, out[0].Category)
	assert.Equal(t, domain.SearchCategoryCriticism, out[1].Category)
	assert.Equal(t, domain.SearchCategorySupport, out[2].Category)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		text string
		want domain.SearchCategory
	}{
		{"https://www.congress.gov/bill", "", domain.SearchCategoryGovernment},
		{"https://news.mit.edu/x", "", domain.SearchCategoryAcademic},
		{"https://www.brookings.edu/articles/y", "", domain.SearchCategoryExpert},
		{"https://www.forbes.com/z", "", domain.SearchCategoryBusiness},
		{"https://apnews.com/article", "Vote scheduled", domain.SearchCategoryNews},
		{"https://blog.example", "An expert analysis", domain.SearchCategoryExpert},
		{"https://blog.example", "weather today", domain.SearchCategoryOther},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.raw)
		require.NoError(t, err)
		assert.Equal(t, tc.want, Classify(u, tc.text), tc.raw)
	}
}

func TestThrottledDelegatesAndHonorsContext(t *testing.T) {
	t.Parallel()

	inner := &fakeProvider{name: "feed"}
	th := NewThrottled(inner, 1)

	_, err := th.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "feed", th.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = th.Search(ctx, "q")
	assert.ErrorIs(t, err, domain.ErrSearch)
	assert.Equal(t, 1, inner.calls)
}

type scriptedProvider struct {
	name    string
	results []domain.SearchResult
	err     error
	calls   int
}

func (s *scriptedProvider) Name() string { return s.name }

func (s *scriptedProvider) Search(context.Context, string) ([]domain.SearchResult, error) {
	s.calls++
	return s.results, s.err
}

func TestSourceFallsThroughProviders(t *testing.T) {
	t.Parallel()

	failing := &scriptedProvider{name: "tavily", err: errors.New("quota exceeded")}
	empty := &scriptedProvider{name: "feed", results: []domain.SearchResult{{URL: "not a url"}}}
	working := &scriptedProvider{name: "duckduckgo", results: []domain.SearchResult{
		{URL: "https://reuters.com/a", Title: " A "},
		{URL: "https://reuters.com/a", Title: "dup"},
		{URL: "https://apnews.com/b", Title: "B"},
	}}

	reg := NewRegistry()
	reg.Register(failing)
	reg.Register(empty)
	reg.Register(working)

	src := NewSource(reg, []string{"tavily", "", "feed", "tavily", "duckduckgo"}, 5, nil)
	assert.Equal(t, "tavily,feed,duckduckgo", src.Name())

	results, err := src.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Title)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
}

func TestSourceErrors(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&scriptedProvider{name: "feed"})
	reg.Register(&scriptedProvider{name: "tavily", err: errors.New("boom")})

	_, err := NewSource(reg, []string{"feed"}, 5, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrNoResults)

	_, err = NewSource(reg, []string{"feed", "tavily"}, 5, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearch)
	assert.ErrorContains(t, err, "boom")

	_, err = NewSource(reg, []string{"bing"}, 5, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearch)
	assert.ErrorContains(t, err, "not registered")

	_, err = NewSource(nil, []string{"feed"}, 5, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearch)

	_, err = NewSource(reg, nil, 5, nil).Search(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrSearch)
}
