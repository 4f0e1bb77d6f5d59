package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatheredValue reads a counter or gauge value from the registry.
func gatheredValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := GetRegistry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metricLoop
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordBetPlaced(t *testing.T) {
	InitRegistry()
	before := gatheredValue(t, "sports_edge_bets_placed_total", map[string]string{"league": "TEST"})

	RecordBetPlaced("TEST")
	RecordBetPlaced("TEST")

	assert.Equal(t, before+2, gatheredValue(t, "sports_edge_bets_placed_total", map[string]string{"league": "TEST"}))
}

func TestRecordBetSettled(t *testing.T) {
	InitRegistry()
	RecordBetSettled("TEST", "SETTLED_PUSH")
	assert.GreaterOrEqual(t, gatheredValue(t, "sports_edge_bets_settled_total", map[string]string{"league": "TEST", "status": "SETTLED_PUSH"}), 1.0)
}

func TestRecordEvaluation(t *testing.T) {
	InitRegistry()
	before := gatheredValue(t, "sports_edge_edge_evaluations_total", nil)

	assert.NotPanics(t, func() {
		RecordEvaluation(0.0005)
	})
	assert.Equal(t, before+1, gatheredValue(t, "sports_edge_edge_evaluations_total", nil))
}

func TestRecordBacktestResult(t *testing.T) {
	InitRegistry()
	RecordBacktestRun("TEST", "success")
	RecordBacktestResult("TEST", 0.042, 0.215)
	RecordBacktestDuration(1.5)

	assert.Equal(t, 0.042, gatheredValue(t, "sports_edge_backtest_roi", map[string]string{"league": "TEST"}))
	assert.Equal(t, 0.215, gatheredValue(t, "sports_edge_backtest_brier_score", map[string]string{"league": "TEST"}))
}

func TestPredictionMetrics(t *testing.T) {
	InitRegistry()
	RecordSlateEvaluated("TEST")
	RecordRecommendation("TEST", "HIGH")
	RecordQuoteRejected("TEST")
	RecordEngineCache(true)
	RecordEngineCache(false)
	RecordRatingRefresh("TEST", 0.2, 30)
	RecordGameSkipped("TEST", "missing_quote")
	UpdateBankroll("TEST", 1075)
	before := gatheredValue(t, "sports_edge_props_evaluated_total", map[string]string{"league": "TEST", "result": "recommended"})
	RecordPropEvaluated("TEST", true)
	RecordPropEvaluated("TEST", false)

	assert.Equal(t, before+1, gatheredValue(t, "sports_edge_props_evaluated_total", map[string]string{"league": "TEST", "result": "recommended"}))

	assert.Equal(t, float64(30), gatheredValue(t, "sports_edge_rated_teams", map[string]string{"league": "TEST"}))
	assert.Equal(t, float64(1075), gatheredValue(t, "sports_edge_current_bankroll", map[string]string{"league": "TEST"}))
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordBetPlaced("HANDLER")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "sports_edge_bets_placed_total"))
}
