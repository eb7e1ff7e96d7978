// Package httpapi exposes the research pipeline over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ResearchReporter/internal/domain"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxQueryLength   = 500
)

// Researcher is the use case surface the routes depend on.
type Researcher interface {
	Research(ctx context.Context, query string) domain.Report
	Lookup(ctx context.Context, slug string) (domain.Report, error)
	Recent(ctx context.Context, limit int) ([]domain.Article, error)
}

type researchRequest struct {
	Query string `json:"query"`
}

// Handler holds route dependencies.
type Handler struct {
	research Researcher
	logger   *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(research Researcher, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{research: research, logger: logger.With("component", "http")}

	r := gin.New()
	r.Use(gin.Recovery(), h.accessLog())

	r.GET("/healthz", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/research", h.createReport)
		api.GET("/reports", h.listReports)
		api.GET("/reports/:slug", h.getReport)
	}
	return r
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createReport(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON with a query field"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if len(query) > maxQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is too long"})
		return
	}

	// The pipeline always yields a renderable report; failures carry category "Error".
	c.JSON(http.StatusOK, h.research.Research(c.Request.Context(), query))
}

func (h *Handler) getReport(c *gin.Context) {
	slug := c.Param("slug")
	report, err := h.research.Lookup(c.Request.Context(), slug)
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		h.logger.Error("lookup report failed", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) listReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	articles, err := h.research.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list reports failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

func (h *Handler) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		h.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(started),
		)
	}
}
