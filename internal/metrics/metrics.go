package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReportsTotal counts finished reports by outcome (success, fallback).
	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_reports_total",
			Help: "Total number of research reports produced",
		},
		[]string{"outcome"},
	)

	// FallbacksTotal counts fallback reports by the stage that failed.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_fallbacks_total",
			Help: "Total number of fallback reports by failing stage",
		},
		[]string{"stage"},
	)

	// RecoveryTotal counts which recovery strategy produced the document.
	RecoveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_recovery_strategy_total",
			Help: "JSON recovery strategy that produced the document",
		},
		[]string{"strategy"},
	)

	// ScrapeFailures counts pages dropped by the scraper.
	ScrapeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_scrape_failures_total",
			Help: "Pages that could not be fetched or parsed",
		},
	)

	// ScrapedPages observes how many pages each report was built from.
	ScrapedPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_scraped_pages",
			Help:    "Pages successfully scraped per report",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	// StageDuration observes per-stage latency.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"stage"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

// ObserveStage records the time elapsed since start for stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordReport counts one finished report.
func RecordReport(fallback bool) {
	if fallback {
		ReportsTotal.WithLabelValues(OutcomeFallback).Inc()
		return
	}
	ReportsTotal.WithLabelValues(OutcomeSuccess).Inc()
}
