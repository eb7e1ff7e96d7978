package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/logging"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubResearcher struct {
	query   string
	limit   int
	reports map[string]domain.Report
}

func (s *stubResearcher) Research(_ context.Context, query string) domain.Report {
	s.query = query
	return domain.Report{Article: domain.Article{Slug: "example-policy-x", Title: query, Category: domain.CategoryResearch}}
}

func (s *stubResearcher) Lookup(_ context.Context, slug string) (domain.Report, error) {
	r, ok := s.reports[slug]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	return r, nil
}

func (s *stubResearcher) Recent(_ context.Context, limit int) ([]domain.Article, error) {
	s.limit = limit
	return []domain.Article{{Slug: "a"}}, nil
}

func serve(t *testing.T, r *stubResearcher, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(r, logging.Discard())
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateReport(t *testing.T) {
	t.Parallel()

	r := &stubResearcher{}
	rec := serve(t, r, http.MethodPost, "/api/research", `{"query":"  Example Policy X "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Example Policy X", r.query)

	var report domain.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "example-policy-x", report.Article.Slug)
	assert.Contains(t, rec.Body.String(), `"executiveSummary"`)
}

func TestCreateReportValidation(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`not json`, `{"query":"   "}`, `{"query":"` + strings.Repeat("x", maxQueryLength+1) + `"}`} {
		rec := serve(t, &stubResearcher{}, http.MethodPost, "/api/research", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()

	r := &stubResearcher{reports: map[string]domain.Report{"a": {Article: domain.Article{Slug: "a"}}}}

	rec := serve(t, r, http.MethodGet, "/api/reports/a", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, r, http.MethodGet, "/api/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReportsClampsLimit(t *testing.T) {
	t.Parallel()

	r := &stubResearcher{}
	rec := serve(t, r, http.MethodGet, "/api/reports?limit=1000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxListLimit, r.limit)

	serve(t, r, http.MethodGet, "/api/reports?limit=abc", "")
	assert.Equal(t, defaultListLimit, r.limit)
}

func TestHealthAndMetrics(t *testing.T) {
	t.Parallel()

	rec := serve(t, &stubResearcher{}, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(t, &stubResearcher{}, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
