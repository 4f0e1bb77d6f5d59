package backtest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/models"
)

func mcBets(n int, prob float64) []*models.Bet {
	bets := make([]*models.Bet, n)
	for i := range bets {
		bets[i] = &models.Bet{
			Stake:       decimal.NewFromInt(10),
			DecimalOdds: 2.0,
			ModelProb:   prob,
			Status:      models.BetStatusSettledWin,
		}
	}
	return bets
}

func TestRunMonteCarloIsReproducible(t *testing.T) {
	cfg := MonteCarloConfig{Iterations: 200, Seed: 42, InitialBankroll: 1000}
	bets := mcBets(50, 0.55)

	a, err := RunMonteCarlo(context.Background(), bets, cfg)
	require.NoError(t, err)
	b, err := RunMonteCarlo(context.Background(), bets, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Distribution, b.Distribution)
	assert.Equal(t, 200, a.Iterations)
	assert.Greater(t, a.MeanReturn, 0.0)
	assert.Contains(t, a.ConfidenceIntervals, "95%")
	assert.NotContains(t, a.ToJSON(), "distribution")
}

func TestRunMonteCarloCertainOutcomes(t *testing.T) {
	cfg := MonteCarloConfig{Iterations: 10, Seed: 1, InitialBankroll: 100}

	winners, err := RunMonteCarlo(context.Background(), mcBets(5, 1.0), cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, winners.MeanReturn, 1e-9)
	assert.Equal(t, 1.0, winners.ProbabilityOfProfit)

	losers, err := RunMonteCarlo(context.Background(), mcBets(10, 0.0), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, losers.ProbabilityOfRuin)
}

func TestRunMonteCarloSkipsPushes(t *testing.T) {
	bets := mcBets(3, 0.0)
	for _, bet := range bets {
		bet.Status = models.BetStatusSettledPush
	}
	res, err := RunMonteCarlo(context.Background(), bets, MonteCarloConfig{Iterations: 5, InitialBankroll: 100})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.MeanReturn)
}

func TestRunMonteCarloValidation(t *testing.T) {
	_, err := RunMonteCarlo(context.Background(), nil, MonteCarloConfig{Iterations: 1})
	assert.Error(t, err)

	res, err := RunMonteCarlo(context.Background(), nil, MonteCarloConfig{InitialBankroll: 10})
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Iterations)
}

func TestCalculateConfidenceIntervals(t *testing.T) {
	dist := make([]float64, 101)
	for i := range dist {
		dist[i] = float64(i)
	}
	ci := CalculateConfidenceIntervals(dist, []float64{0.9})
	assert.InDelta(t, 90, ci["90%"], 1.0)
}
