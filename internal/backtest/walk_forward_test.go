package backtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/models"
)

func TestRunWalkForwardSplitsWindow(t *testing.T) {
	var games []models.Game
	quotes := make(map[string]*models.MarketQuote)
	for d := 1; d <= 30; d++ {
		g := playedGame(fmt.Sprintf("g%02d", d), d, "BOS", "NYK", 100+d%3, 100)
		games = append(games, g)
		quotes[g.ID] = quoteFor(g, 110, -130)
	}

	engine := newTestEngine(t, testConfig(1, 30), homeStrategy{stake: decimal.NewFromInt(10)})
	result, err := RunWalkForward(context.Background(), engine, games, quotes, 3)
	require.NoError(t, err)
	require.Len(t, result.Windows, 3)

	total := 0
	for i, w := range result.Windows {
		assert.Equal(t, i+1, w.WindowID)
		total += w.Metrics.TotalBets
	}
	assert.Equal(t, 30, total)
	assert.Equal(t, 30, result.AggregatedMetrics.TotalBets)
	assert.True(t, result.Windows[2].TestEnd.Equal(engine.Config().EndDate))
	assert.GreaterOrEqual(t, result.ConsistencyScore, 0.0)
	assert.LessOrEqual(t, result.ConsistencyScore, 1.0)
}

func TestRunWalkForwardValidation(t *testing.T) {
	_, err := RunWalkForward(context.Background(), nil, nil, nil, 3)
	assert.Error(t, err)

	engine := newTestEngine(t, testConfig(1, 30), homeStrategy{stake: decimal.NewFromInt(10)})
	_, err = RunWalkForward(context.Background(), engine, nil, nil, 0)
	assert.Error(t, err)
}

func TestCalculateConsistency(t *testing.T) {
	windows := []WalkForwardWindow{
		{Metrics: Metrics{ROI: 0.1}},
		{Metrics: Metrics{ROI: -0.1}},
		{Metrics: Metrics{ROI: 0.2}},
		{Metrics: Metrics{ROI: 0}},
	}
	assert.InDelta(t, 0.5, CalculateConsistency(windows), 1e-12)
	assert.Equal(t, 0.0, CalculateConsistency(nil))
}
