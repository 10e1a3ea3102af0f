// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package metrics exposes Prometheus instrumentation for the engine:
// taste analysis, compatibility matching, recommendation queries, expertise
// scoring, storage latency, and cache efficiency. All collectors are
// registered on the default registry via promauto and served by the
// metrics endpoint in cmd/engine.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Taste analysis metrics
	TasteAnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taste_analysis_duration_seconds",
			Help:    "Duration of taste profile analysis in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TasteProfilesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taste_profiles_generated_total",
			Help: "Total number of taste profiles generated",
		},
	)

	TasteAnalysisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taste_analysis_errors_total",
			Help: "Total number of taste analysis errors",
		},
		[]string{"error_type"}, // "insufficient_data", "storage", "other"
	)

	TasteProfilesConfirmed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taste_profiles_confirmed_total",
			Help: "Total number of taste profiles confirmed by their owners",
		},
	)

	// Matching metrics
	MatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "match_duration_seconds",
			Help:    "Duration of compatibility matching in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"}, // "local", "global"
	)

	MatchCandidatesCompared = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_candidates_compared",
			Help:    "Number of candidate profiles compared per match request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	MatchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_errors_total",
			Help: "Total number of matching errors",
		},
		[]string{"error_type"}, // "not_confirmed", "not_found", "storage"
	)

	// Recommendation metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"}, // "playlist", "travel", "typer"
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation results returned",
		},
		[]string{"kind"},
	)

	RecommendationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_popularity_fallbacks_total",
			Help: "Recommendation requests answered from popularity because the user had no history",
		},
	)

	// Expertise metrics
	ExpertiseActionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expertise_actions_recorded_total",
			Help: "Total number of expertise-earning actions recorded",
		},
		[]string{"action"},
	)

	ExpertiseLevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "expertise_level_ups_total",
			Help: "Total number of expertise level increases",
		},
	)

	RankRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rank_recompute_duration_seconds",
			Help:    "Duration of category rank recomputation in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	RankRecomputeLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rank_recompute_last_success_timestamp",
			Help: "Unix timestamp of the last successful rank recomputation",
		},
	)

	RankRecomputeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rank_recompute_errors_total",
			Help: "Total number of rank recomputation errors",
		},
	)

	// Storage metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "match", "recommendation", "spatial"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	// System metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordTasteAnalysis records an analysis run and its outcome.
func RecordTasteAnalysis(duration time.Duration, err error) {
	TasteAnalysisDuration.Observe(duration.Seconds())
	if err != nil {
		TasteAnalysisErrors.WithLabelValues(classifyError(err)).Inc()
		return
	}
	TasteProfilesGenerated.Inc()
}

// RecordMatch records a matching run for the given scope ("local" or "global").
func RecordMatch(scope string, duration time.Duration, candidates int) {
	MatchDuration.WithLabelValues(scope).Observe(duration.Seconds())
	MatchCandidatesCompared.Observe(float64(candidates))
}

// RecordRecommendation records a recommendation query and the number of
// results returned.
func RecordRecommendation(kind string, duration time.Duration, results int) {
	RecommendationDuration.WithLabelValues(kind).Observe(duration.Seconds())
	RecommendationsServed.WithLabelValues(kind).Add(float64(results))
}

// RecordRankRecompute records a batch rank recomputation run.
func RecordRankRecompute(duration time.Duration, err error) {
	RankRecomputeDuration.Observe(duration.Seconds())
	if err != nil {
		RankRecomputeErrors.Inc()
		return
	}
	RankRecomputeLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordDBQuery records a storage query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// classifyError maps an error message to a low-cardinality label.
func classifyError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "insufficient"):
		return "insufficient_data"
	case strings.Contains(msg, "storage"), strings.Contains(msg, "database"), strings.Contains(msg, "sql"):
		return "storage"
	default:
		return "other"
	}
}
