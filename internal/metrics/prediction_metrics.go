package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prediction service counter vectors
var (
	SlatesEvaluatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slates_evaluated_total",
		Help:      "Total number of slates evaluated by league",
	}, []string{"league"})

	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of recommended sides by league and confidence tier",
	}, []string{"league", "tier"})

	QuotesRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_rejected_total",
		Help:      "Quotes that failed validation by league",
	}, []string{"league"})

	PropsEvaluatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "props_evaluated_total",
		Help:      "Player prop lines analyzed by league and result",
	}, []string{"league", "result"})

	EngineCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rating_engine_cache_total",
		Help:      "Rating engine cache lookups by result",
	}, []string{"result"})
)

// Prediction service histogram vectors
var (
	RatingRefreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rating_refresh_duration_seconds",
		Help:      "Time to rebuild a league's ratings from history",
		Buckets:   prometheus.DefBuckets,
	}, []string{"league"})
)

// Prediction service gauge vectors
var (
	RatedTeams = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rated_teams",
		Help:      "Number of teams carrying a rating per league",
	}, []string{"league"})
)

// RecordSlateEvaluated records one evaluated slate.
func RecordSlateEvaluated(league string) {
	SlatesEvaluatedTotal.WithLabelValues(league).Inc()
}

// RecordRecommendation records a recommended side.
func RecordRecommendation(league, tier string) {
	RecommendationsTotal.WithLabelValues(league, tier).Inc()
}

// RecordQuoteRejected records a quote that could not be evaluated.
func RecordQuoteRejected(league string) {
	QuotesRejectedTotal.WithLabelValues(league).Inc()
}

// RecordEngineCache records a cache hit or miss.
func RecordEngineCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	EngineCacheTotal.WithLabelValues(result).Inc()
}

// RecordRatingRefresh records a rebuilt rating table.
func RecordRatingRefresh(league string, durationSeconds float64, teams int) {
	RatingRefreshDuration.WithLabelValues(league).Observe(durationSeconds)
	RatedTeams.WithLabelValues(league).Set(float64(teams))
}

// RecordPropEvaluated records an analyzed prop line.
func RecordPropEvaluated(league string, recommended bool) {
	result := "pass"
	if recommended {
		result = "recommended"
	}
	PropsEvaluatedTotal.WithLabelValues(league, result).Inc()
}
