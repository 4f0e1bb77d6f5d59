package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by league and status",
	}, []string{"league", "status"})
)

// Backtest gauge vectors
var (
	BacktestROI = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_roi",
		Help:      "Return on stake of the latest backtest per league",
	}, []string{"league"})
	BacktestBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_brier_score",
		Help:      "Brier score of the latest backtest per league",
	}, []string{"league"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure"
func RecordBacktestRun(league, status string) {
	BacktestRunsTotal.WithLabelValues(league, status).Inc()
}

// RecordBacktestResult publishes the headline numbers of a finished run.
func RecordBacktestResult(league string, roi, brier float64) {
	BacktestROI.WithLabelValues(league).Set(roi)
	BacktestBrierScore.WithLabelValues(league).Set(brier)
}
