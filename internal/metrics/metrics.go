// Package metrics provides centralized Prometheus metrics registry for the edge engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sports_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	BetsPlacedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_placed_total",
		Help:      "Total number of bets placed by league",
	}, []string{"league"})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled by league and status",
	}, []string{"league", "status"})
	EvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "edge_evaluations_total",
		Help:      "Total number of game edge evaluations",
	})
	GamesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_skipped_total",
		Help:      "Games left out of betting by league and reason",
	}, []string{"league", "reason"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_bankroll",
		Help:      "Bankroll in currency units",
	}, []string{"league"})
)

// Histogram metrics
var (
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "edge_evaluation_duration_seconds",
		Help:      "Duration of a single game edge evaluation in seconds",
		Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(GamesSkippedTotal)

		// Register gauge metrics
		registry.MustRegister(CurrentBankroll)

		// Register histogram metrics
		registry.MustRegister(EvaluationDuration)
		registry.MustRegister(BacktestDuration)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestROI)
		registry.MustRegister(BacktestBrierScore)

		// Register prediction metrics
		registry.MustRegister(SlatesEvaluatedTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(QuotesRejectedTotal)
		registry.MustRegister(PropsEvaluatedTotal)
		registry.MustRegister(EngineCacheTotal)
		registry.MustRegister(RatingRefreshDuration)
		registry.MustRegister(RatedTeams)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordBetPlaced records a bet placement event.
func RecordBetPlaced(league string) {
	BetsPlacedTotal.WithLabelValues(league).Inc()
}

// RecordBetSettled records a bet settlement event.
func RecordBetSettled(league, status string) {
	BetsSettledTotal.WithLabelValues(league, status).Inc()
}

// RecordEvaluation records one game edge evaluation.
func RecordEvaluation(durationSeconds float64) {
	EvaluationsTotal.Inc()
	EvaluationDuration.Observe(durationSeconds)
}

// RecordGameSkipped records a game left out of betting.
func RecordGameSkipped(league, reason string) {
	GamesSkippedTotal.WithLabelValues(league, reason).Inc()
}

// UpdateBankroll updates the bankroll gauge for a league.
func UpdateBankroll(league string, amount float64) {
	CurrentBankroll.WithLabelValues(league).Set(amount)
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}
