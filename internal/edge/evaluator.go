// Package edge compares model probabilities with de-vigged market prices
// and picks at most one side per game to recommend.
package edge

import (
	"fmt"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/odds"
)

const (
	// DefaultMinEdgeThreshold is the minimum edge as a probability (1 percentage point).
	DefaultMinEdgeThreshold = 0.01

	highEVThreshold   = 0.12
	highEdgeThreshold = 15.0
	midEVThreshold    = 0.06
	midEdgeThreshold  = 8.0
)

// Config controls side selection.
type Config struct {
	MinEdgeThreshold float64          `json:"min_edge_threshold"`
	Kelly            odds.KellyParams `json:"kelly"`
	// ShrinkWeight blends the model toward the market:
	// p = w*model + (1-w)*market. 1 disables shrinking.
	ShrinkWeight float64 `json:"shrink_weight"`
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() Config {
	return Config{
		MinEdgeThreshold: DefaultMinEdgeThreshold,
		Kelly:            odds.DefaultKellyParams(),
		ShrinkWeight:     1,
	}
}

// FromConfig maps application config onto an evaluator config. Zero values
// are filled with defaults by NewEvaluator.
func FromConfig(ec config.EdgeConfig) Config {
	return Config{
		MinEdgeThreshold: ec.MinEdgeThreshold,
		Kelly: odds.KellyParams{
			Cap:        ec.KellyCap,
			Multiplier: ec.KellyMultiplier,
		},
		ShrinkWeight: ec.ShrinkWeight,
	}
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MinEdgeThreshold < 0 || c.MinEdgeThreshold >= 1 {
		return fmt.Errorf("min_edge_threshold must be in [0, 1), got %v", c.MinEdgeThreshold)
	}
	if c.Kelly.Cap <= 0 || c.Kelly.Cap > 1 {
		return fmt.Errorf("kelly cap must be in (0, 1], got %v", c.Kelly.Cap)
	}
	if c.Kelly.Multiplier <= 0 || c.Kelly.Multiplier > 1 {
		return fmt.Errorf("kelly multiplier must be in (0, 1], got %v", c.Kelly.Multiplier)
	}
	if c.ShrinkWeight <= 0 || c.ShrinkWeight > 1 {
		return fmt.Errorf("shrink_weight must be in (0, 1], got %v", c.ShrinkWeight)
	}
	return nil
}

// Result is the evaluation of every priced side of one game.
type Result struct {
	GameID string            `json:"game_id"`
	Sides  []odds.EdgeReport `json:"sides"`
	// RecommendedSide is SideNone when nothing qualifies.
	RecommendedSide models.Side           `json:"recommended_side"`
	Tier            models.ConfidenceTier `json:"confidence_tier"`
}

// Recommendation returns the report for the recommended side.
func (r *Result) Recommendation() (odds.EdgeReport, bool) {
	if r.RecommendedSide == models.SideNone {
		return odds.EdgeReport{}, false
	}
	for _, s := range r.Sides {
		if s.Side == r.RecommendedSide {
			return s, true
		}
	}
	return odds.EdgeReport{}, false
}

// Evaluator scores quotes against model probabilities.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an evaluator. Zero values in cfg fall back to defaults.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	def := DefaultConfig()
	if cfg.Kelly.Cap == 0 {
		cfg.Kelly.Cap = def.Kelly.Cap
	}
	if cfg.Kelly.Multiplier == 0 {
		cfg.Kelly.Multiplier = def.Kelly.Multiplier
	}
	if cfg.ShrinkWeight == 0 {
		cfg.ShrinkWeight = def.ShrinkWeight
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (e *Evaluator) Config() Config {
	return e.cfg
}

// Evaluate computes EV, edge and Kelly for each side of the quote and
// recommends the qualifying side with the highest EV. A side qualifies when
// its EV is positive and its edge is at least the minimum threshold. Having no
// qualifying side is not an error.
func (e *Evaluator) Evaluate(probs models.Probabilities, quote models.MarketQuote) (*Result, error) {
	fair, err := odds.FairProbabilities(quote)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", quote.GameID, err)
	}

	result := &Result{
		GameID:          quote.GameID,
		RecommendedSide: models.SideNone,
		Tier:            models.TierLow,
	}

	best := -1
	for _, side := range quote.Sides() {
		p := e.shrink(probs.For(side), fair[side])
		report, err := odds.ComputeEdge(p, side, quote, e.cfg.Kelly)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", quote.GameID, err)
		}
		result.Sides = append(result.Sides, report)

		if !e.qualifies(report) {
			continue
		}
		if best < 0 || report.ExpectedValue > result.Sides[best].ExpectedValue {
			best = len(result.Sides) - 1
		}
	}

	if best >= 0 {
		rec := result.Sides[best]
		result.RecommendedSide = rec.Side
		result.Tier = Tier(rec.ExpectedValue, rec.Edge)
	}
	return result, nil
}

func (e *Evaluator) qualifies(r odds.EdgeReport) bool {
	return r.ExpectedValue > 0 && r.Edge >= e.cfg.MinEdgeThreshold*100
}

func (e *Evaluator) shrink(model, market float64) float64 {
	w := e.cfg.ShrinkWeight
	return w*model + (1-w)*market
}

// Tier buckets a side by EV and edge (in percentage points). Lower bounds are inclusive.
func Tier(ev, edgePP float64) models.ConfidenceTier {
	switch {
	case ev >= highEVThreshold && edgePP >= highEdgeThreshold:
		return models.TierHigh
	case ev >= midEVThreshold && edgePP >= midEdgeThreshold:
		return models.TierMedium
	default:
		return models.TierLow
	}
}
