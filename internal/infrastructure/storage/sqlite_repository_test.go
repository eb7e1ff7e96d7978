package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchReporter/internal/domain"
)

func newReport(slug, title string) domain.Report {
	return domain.Report{
		Article: domain.Article{
			ID:          "id-" + slug,
			Slug:        slug,
			Title:       title,
			Category:    domain.CategoryResearch,
			PublishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			ReadTime:    3,
		},
		ExecutiveSummary: domain.ExecutiveSummary{ID: "s", ArticleID: "id-" + slug, Points: []string{"one"}},
		TimelineItems:    []domain.TimelineItem{},
		CitedSources:     []domain.CitedSource{{ID: "c", ArticleID: "id-" + slug, Name: "Reuters", URL: "https://reuters.com/a"}},
		RawFacts:         []domain.RawFactsGroup{},
		Perspectives:     []domain.Perspective{},
	}
}

func openRepo(t *testing.T, capacity int) *SQLiteRepository {
	t.Helper()
	repo, err := OpenMemory(context.Background(), capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	repo := openRepo(t, 10)
	ctx := context.Background()

	want := newReport("policy-x", "Policy X")
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx, "policy-x")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveOverwritesSameSlug(t *testing.T) {
	t.Parallel()

	repo := openRepo(t, 10)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newReport("a", "first")))
	require.NoError(t, repo.Save(ctx, newReport("b", "other")))
	require.NoError(t, repo.Save(ctx, newReport("a", "second")))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Article.Title)

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Slug)
	assert.Equal(t, "b", list[1].Slug)
}

func TestSaveEvictsOldest(t *testing.T) {
	t.Parallel()

	repo := openRepo(t, 3)
	ctx := context.Background()

	for i := range 5 {
		require.NoError(t, repo.Save(ctx, newReport(fmt.Sprintf("r%d", i), "t")))
	}

	list, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"r4", "r3", "r2"}, []string{list[0].Slug, list[1].Slug, list[2].Slug})

	_, err = repo.Get(ctx, "r0")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "r4", limited[0].Slug)
}

func TestSaveRejectsEmptySlug(t *testing.T) {
	t.Parallel()

	repo := openRepo(t, 3)
	assert.Error(t, repo.Save(context.Background(), newReport("", "t")))
}

func TestNilDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := &SQLiteRepository{}
	assert.NoError(t, repo.Save(context.Background(), newReport("a", "t")))
	_, err := repo.Get(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := repo.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, list)
}
