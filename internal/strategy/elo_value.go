package strategy

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/edge"
	"github.com/yourusername/sports-edge/internal/staking"
)

// EloValueStrategy bets the side the evaluator recommends, sized by fractional Kelly.
type EloValueStrategy struct {
	BaseStrategy
	NameValue string
	evaluator *edge.Evaluator
	allocator *staking.Allocator
}

// NewEloValueStrategy creates a value strategy on top of an evaluator and allocator
func NewEloValueStrategy(evaluator *edge.Evaluator, allocator *staking.Allocator) (*EloValueStrategy, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("allocator is required")
	}
	return &EloValueStrategy{
		BaseStrategy: BaseStrategy{
			MinDecimalOdds: 1.01,
		},
		NameValue: "elo_value",
		evaluator: evaluator,
		allocator: allocator,
	}, nil
}

// NewEloValueFromConfig builds the evaluator, allocator and strategy from
// application config
func NewEloValueFromConfig(ec config.EdgeConfig, sc config.StakingConfig, logger *logrus.Logger) (*EloValueStrategy, error) {
	evaluator, err := edge.NewEvaluator(edge.FromConfig(ec))
	if err != nil {
		return nil, fmt.Errorf("invalid edge config: %w", err)
	}
	allocator, err := staking.NewAllocator(staking.FromConfig(sc), logger)
	if err != nil {
		return nil, fmt.Errorf("invalid staking config: %w", err)
	}
	s, err := NewEloValueStrategy(evaluator, allocator)
	if err != nil {
		return nil, err
	}
	s.SkipInsufficientData = ec.SkipInsufficientData
	return s, nil
}

// Name returns strategy name
func (s *EloValueStrategy) Name() string {
	return s.NameValue
}

// Evaluate evaluates one game and returns at most one signal
func (s *EloValueStrategy) Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error) {
	_ = ctx
	if strategyCtx.Game == nil {
		return nil, fmt.Errorf("game is required")
	}
	if strategyCtx.Quote == nil {
		return nil, fmt.Errorf("quote is required for game %s", strategyCtx.Game.ID)
	}
	if err := s.ValidateTemporalSafety(strategyCtx.CurrentTime, strategyCtx.Quote); err != nil {
		return nil, err
	}

	snap := strategyCtx.Snapshot
	if s.SkipInsufficientData && snap.InsufficientData() {
		return nil, nil
	}

	result, err := s.evaluator.Evaluate(s.NormalizeProbabilities(snap.Probabilities), *strategyCtx.Quote)
	if err != nil {
		return nil, err
	}
	rec, ok := result.Recommendation()
	if !ok {
		return nil, nil
	}
	if err := s.ValidateOdds(rec.DecimalOdds); err != nil {
		return nil, nil
	}

	signal := Signal{
		GameID:        strategyCtx.Game.ID,
		Side:          rec.Side,
		AmericanOdds:  rec.AmericanOdds,
		DecimalOdds:   rec.DecimalOdds,
		ModelProb:     rec.ModelProb,
		MarketProb:    rec.MarketProb,
		ExpectedValue: rec.ExpectedValue,
		Edge:          rec.Edge,
		KellyFraction: rec.KellyFraction,
		Tier:          result.Tier,
		Reasoning:     "Model edge over de-vigged market exceeds threshold",
		Features: map[string]any{
			"elo_home_pre":      snap.HomeRating,
			"elo_away_pre":      snap.AwayRating,
			"elo_diff":          snap.RatingDiff(),
			"insufficient_data": snap.InsufficientData(),
		},
	}
	return []Signal{signal}, nil
}

// ShouldBet determines if a signal should be executed
func (s *EloValueStrategy) ShouldBet(signal Signal) bool {
	return signal.ExpectedValue > 0 && signal.KellyFraction > 0
}

// CalculateStake sizes a signal against the current bankroll
func (s *EloValueStrategy) CalculateStake(signal Signal, bankroll decimal.Decimal) decimal.Decimal {
	stake := s.allocator.SingleStake(signal.Candidate(), bankroll)
	if stake.GreaterThan(bankroll) {
		return bankroll
	}
	return stake
}

// GetParameters returns strategy parameters for run records
func (s *EloValueStrategy) GetParameters() map[string]interface{} {
	ec := s.evaluator.Config()
	return map[string]interface{}{
		"min_edge_threshold":     ec.MinEdgeThreshold,
		"kelly_cap":              ec.Kelly.Cap,
		"kelly_multiplier":       ec.Kelly.Multiplier,
		"shrink_weight":          ec.ShrinkWeight,
		"skip_insufficient_data": s.SkipInsufficientData,
	}
}

// Candidate converts a signal into a staking candidate
func (sig Signal) Candidate() staking.Candidate {
	return staking.Candidate{
		GameID:        sig.GameID,
		Side:          sig.Side,
		AmericanOdds:  sig.AmericanOdds,
		DecimalOdds:   sig.DecimalOdds,
		ModelProb:     sig.ModelProb,
		ExpectedValue: sig.ExpectedValue,
		Edge:          sig.Edge,
		KellyFraction: sig.KellyFraction,
		Tier:          sig.Tier,
	}
}
