package staking

import (
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/edge"
	"github.com/yourusername/sports-edge/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestAllocator(t *testing.T, cfg Config) *Allocator {
	t.Helper()
	a, err := NewAllocator(cfg, quietLogger())
	require.NoError(t, err)
	return a
}

func candidate(gameID string, ev, kelly float64) Candidate {
	return Candidate{
		GameID:        gameID,
		Side:          models.SideHome,
		AmericanOdds:  100,
		DecimalOdds:   2.0,
		ExpectedValue: ev,
		KellyFraction: kelly,
	}
}

func TestSingleStake(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())
	bankroll := decimal.NewFromInt(1000)

	stake := a.SingleStake(candidate("g1", 0.10, 0.0125), bankroll)
	assert.True(t, stake.Equal(decimal.NewFromFloat(12.5)), "got %s", stake)

	none := candidate("g2", 0.10, 0.02)
	none.Side = models.SideNone
	assert.True(t, a.SingleStake(none, bankroll).IsZero())

	assert.True(t, a.SingleStake(candidate("g3", -0.05, 0), bankroll).IsZero())
	assert.True(t, a.SingleStake(candidate("g4", 0.10, 0.02), decimal.Zero).IsZero())
}

func TestSingleStakeRoundsDown(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())
	stake := a.SingleStake(candidate("g1", 0.10, 0.01234), decimal.NewFromInt(1000))
	assert.Equal(t, "12.34", stake.StringFixed(2))
}

func TestStakeAmount(t *testing.T) {
	assert.Equal(t, "13.60", StakeAmount(decimal.NewFromInt(1000), 0.013605).StringFixed(2))
	assert.True(t, StakeAmount(decimal.NewFromInt(1000), 0).IsZero())
	assert.True(t, StakeAmount(decimal.NewFromInt(-5), 0.1).IsZero())
}

func TestCandidateFromResult(t *testing.T) {
	ev, err := edge.NewEvaluator(edge.DefaultConfig())
	require.NoError(t, err)

	result, err := ev.Evaluate(models.Probabilities{Home: 0.60, Away: 0.40},
		models.MarketQuote{GameID: "g1", HomeOdds: -110, AwayOdds: -110})
	require.NoError(t, err)

	c, ok := CandidateFromResult(result)
	require.True(t, ok)
	assert.Equal(t, "g1", c.GameID)
	assert.Equal(t, models.SideHome, c.Side)
	assert.Equal(t, -110, c.AmericanOdds)
	assert.Equal(t, models.TierMedium, c.Tier)

	result, err = ev.Evaluate(models.Probabilities{Home: 0.5, Away: 0.5},
		models.MarketQuote{GameID: "g2", HomeOdds: -110, AwayOdds: -110})
	require.NoError(t, err)
	_, ok = CandidateFromResult(result)
	assert.False(t, ok)
}

func TestProportionalAllocateNormalizesKelly(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())
	bankroll := decimal.NewFromInt(1000)

	allocs := a.ProportionalAllocate([]Candidate{
		candidate("g2", 0.04, 0.00625),
		candidate("g1", 0.06, 0.0125),
	}, bankroll)

	require.Len(t, allocs, 2)
	assert.Equal(t, "g1", allocs[0].GameID)
	assert.InDelta(t, 2.0/3.0, allocs[0].Fraction, 1e-9)
	assert.InDelta(t, 1.0/3.0, allocs[1].Fraction, 1e-9)
	assert.True(t, allocs[0].Amount.Equal(decimal.RequireFromString("666.66")), allocs[0].Amount.String())
	assert.True(t, allocs[1].Amount.Equal(decimal.RequireFromString("333.33")), allocs[1].Amount.String())
}

func TestProportionalAllocateSplitsRiskBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotalRisk = 0.06
	a := newTestAllocator(t, cfg)
	bankroll := decimal.NewFromInt(1000)

	allocs := a.ProportionalAllocate([]Candidate{
		candidate("g1", 0.05, 0.03),
		candidate("g2", 0.10, 0.05),
		candidate("g3", 0.08, 0.04),
	}, bankroll)

	require.Len(t, allocs, 3)
	assert.Equal(t, []string{"g2", "g3", "g1"}, []string{allocs[0].GameID, allocs[1].GameID, allocs[2].GameID})
	assert.InDelta(t, 25, allocs[0].Amount.InexactFloat64(), 0.011)
	assert.InDelta(t, 20, allocs[1].Amount.InexactFloat64(), 0.011)
	assert.InDelta(t, 15, allocs[2].Amount.InexactFloat64(), 0.011)

	total := decimal.Zero
	for _, al := range allocs {
		total = total.Add(al.Amount)
	}
	assert.True(t, total.LessThanOrEqual(decimal.NewFromInt(60)))
}

func TestProportionalAllocateSingleCandidateTakesBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotalRisk = 0.1
	a := newTestAllocator(t, cfg)

	allocs := a.ProportionalAllocate([]Candidate{candidate("g1", 0.05, 0.0125)}, decimal.NewFromInt(1000))

	require.Len(t, allocs, 1)
	assert.InDelta(t, 0.1, allocs[0].Fraction, 1e-12)
	assert.True(t, allocs[0].Amount.Equal(decimal.NewFromInt(100)), allocs[0].Amount.String())
}

func TestProportionalAllocateNeverExceedsBankroll(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())
	bankroll := decimal.NewFromFloat(777.77)

	var cands []Candidate
	for i, k := range []float64{0.4, 0.35, 0.3, 0.25, 0.2, 0.15, 0.1} {
		cands = append(cands, candidate(string(rune('a'+i)), 0.2, k))
	}
	allocs := a.ProportionalAllocate(cands, bankroll)

	require.Len(t, allocs, DefaultTopN)
	total := decimal.Zero
	for _, al := range allocs {
		total = total.Add(al.Amount)
	}
	assert.True(t, total.LessThanOrEqual(bankroll), "allocated %s of %s", total, bankroll)
}

func TestProportionalAllocateSkipsNonPositive(t *testing.T) {
	a := newTestAllocator(t, DefaultConfig())
	allocs := a.ProportionalAllocate([]Candidate{
		candidate("g1", -0.02, 0),
		candidate("g2", 0.05, 0),
	}, decimal.NewFromInt(1000))
	assert.Empty(t, allocs)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTotalRisk = 1.5
	_, err := NewAllocator(cfg, nil)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.MaxParlayLegs = 1
	_, err = NewAllocator(cfg, nil)
	assert.Error(t, err)
}

func TestFromConfigKeepsDefaults(t *testing.T) {
	c := FromConfig(config.StakingConfig{MaxTotalRisk: 0.25})
	assert.Equal(t, 0.25, c.MaxTotalRisk)
	assert.Equal(t, DefaultTopN, c.TopN)
	assert.Equal(t, DefaultLegProbCap, c.LegProbCap)
	assert.NoError(t, c.Validate())
}
