package strategy

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/edge"
	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/staking"
)

func newTestStrategy(t *testing.T) *EloValueStrategy {
	t.Helper()
	ev, err := edge.NewEvaluator(edge.DefaultConfig())
	require.NoError(t, err)
	log := logrus.New()
	log.SetOutput(io.Discard)
	alloc, err := staking.NewAllocator(staking.DefaultConfig(), log)
	require.NoError(t, err)
	s, err := NewEloValueStrategy(ev, alloc)
	require.NoError(t, err)
	return s
}

func testContext(pHome float64) Context {
	start := time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)
	return Context{
		Game: &models.Game{ID: "g1", League: "NBA", Date: start, HomeTeam: "BOS", AwayTeam: "NYK"},
		Snapshot: models.RatingSnapshot{
			GameID:          "g1",
			HomeRating:      1600,
			AwayRating:      1500,
			Probabilities:   models.Probabilities{Home: pHome, Away: 1 - pHome},
			HomeGamesPlayed: 10,
			AwayGamesPlayed: 10,
		},
		Quote:       &models.MarketQuote{GameID: "g1", Timestamp: start.Add(-time.Hour), HomeOdds: -110, AwayOdds: -110},
		CurrentTime: start,
	}
}

func TestEloValueEvaluateProducesSignal(t *testing.T) {
	s := newTestStrategy(t)

	signals, err := s.Evaluate(context.Background(), testContext(0.60))
	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, models.SideHome, sig.Side)
	assert.Equal(t, -110, sig.AmericanOdds)
	assert.InDelta(t, 10.0, sig.Edge, 0.01)
	assert.True(t, s.ShouldBet(sig))

	stake := s.CalculateStake(sig, decimal.NewFromInt(1000))
	assert.True(t, stake.IsPositive())
	assert.True(t, stake.LessThanOrEqual(decimal.NewFromInt(1000)))
}

func TestEloValueEvaluateNoEdge(t *testing.T) {
	s := newTestStrategy(t)

	signals, err := s.Evaluate(context.Background(), testContext(0.50))
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestEloValueRejectsFutureQuote(t *testing.T) {
	s := newTestStrategy(t)
	ctx := testContext(0.60)
	ctx.Quote.Timestamp = ctx.CurrentTime.Add(time.Minute)

	_, err := s.Evaluate(context.Background(), ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temporal safety violation")
}

func TestEloValueSkipInsufficientData(t *testing.T) {
	s := newTestStrategy(t)
	ctx := testContext(0.60)
	ctx.Snapshot.HomeGamesPlayed = 0
	ctx.Snapshot.HomeUnseen = true

	signals, err := s.Evaluate(context.Background(), ctx)
	require.NoError(t, err)
	assert.Len(t, signals, 1, "flag is informational unless skipping is enabled")
	assert.Equal(t, true, signals[0].Features["insufficient_data"])

	s.SkipInsufficientData = true
	signals, err = s.Evaluate(context.Background(), ctx)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestEloValueRequiresInputs(t *testing.T) {
	s := newTestStrategy(t)
	_, err := s.Evaluate(context.Background(), Context{})
	assert.Error(t, err)

	ctx := testContext(0.6)
	ctx.Quote = nil
	_, err = s.Evaluate(context.Background(), ctx)
	assert.Error(t, err)

	_, err = NewEloValueStrategy(nil, nil)
	assert.Error(t, err)
}

func TestNormalizeProbability(t *testing.T) {
	var b BaseStrategy
	assert.Equal(t, 0.0, b.NormalizeProbability(-0.2))
	assert.Equal(t, 1.0, b.NormalizeProbability(1.3))
	assert.Equal(t, 0.4, b.NormalizeProbability(0.4))
}

func TestNewEloValueFromConfig(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := NewEloValueFromConfig(config.EdgeConfig{
		MinEdgeThreshold:     0.02,
		ShrinkWeight:         0.7,
		SkipInsufficientData: true,
	}, config.StakingConfig{}, log)
	require.NoError(t, err)
	assert.True(t, s.SkipInsufficientData)

	params := s.GetParameters()
	assert.Equal(t, 0.02, params["min_edge_threshold"])
	assert.Equal(t, 0.7, params["shrink_weight"])
	assert.Equal(t, 0.25, params["kelly_multiplier"])

	_, err = NewEloValueFromConfig(config.EdgeConfig{}, config.StakingConfig{MaxTotalRisk: 1.5}, log)
	assert.Error(t, err)
}
