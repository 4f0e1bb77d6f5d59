// Package staking turns recommended sides into dollar stakes, slate
// allocations and parlay suggestions.
package staking

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/edge"
	"github.com/yourusername/sports-edge/internal/models"
)

const (
	DefaultTopN          = 5
	DefaultMaxTotalRisk  = 1.0
	DefaultMaxParlayLegs = 3
	DefaultParlayMargin  = 0.10
	DefaultLegProbCap    = 0.95
)

// Config controls allocation and parlay selection.
type Config struct {
	TopN int `json:"top_n"`
	// MaxTotalRisk is the largest share of bankroll a slate may use. Never above 1.
	MaxTotalRisk  float64 `json:"max_total_risk"`
	MaxParlayLegs int     `json:"max_parlay_legs"`
	// ParlayMargin is the largest drop in hit probability accepted for one more leg.
	ParlayMargin float64 `json:"parlay_margin"`
	LegProbCap   float64 `json:"leg_prob_cap"`
}

// DefaultConfig returns the default allocator configuration.
func DefaultConfig() Config {
	return Config{
		TopN:          DefaultTopN,
		MaxTotalRisk:  DefaultMaxTotalRisk,
		MaxParlayLegs: DefaultMaxParlayLegs,
		ParlayMargin:  DefaultParlayMargin,
		LegProbCap:    DefaultLegProbCap,
	}
}

// FromConfig maps application config onto an allocator config, keeping
// defaults for unset values.
func FromConfig(sc config.StakingConfig) Config {
	c := DefaultConfig()
	if sc.TopN > 0 {
		c.TopN = sc.TopN
	}
	if sc.MaxTotalRisk > 0 {
		c.MaxTotalRisk = sc.MaxTotalRisk
	}
	if sc.MaxParlayLegs > 0 {
		c.MaxParlayLegs = sc.MaxParlayLegs
	}
	if sc.ParlayMargin > 0 {
		c.ParlayMargin = sc.ParlayMargin
	}
	if sc.LegProbCap > 0 {
		c.LegProbCap = sc.LegProbCap
	}
	return c
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.MaxTotalRisk <= 0 || c.MaxTotalRisk > 1 {
		return fmt.Errorf("max_total_risk must be in (0, 1], got %v", c.MaxTotalRisk)
	}
	if c.MaxParlayLegs < 2 {
		return fmt.Errorf("max_parlay_legs must be at least 2, got %d", c.MaxParlayLegs)
	}
	if c.ParlayMargin < 0 || c.ParlayMargin > 1 {
		return fmt.Errorf("parlay_margin must be in [0, 1], got %v", c.ParlayMargin)
	}
	if c.LegProbCap <= 0 || c.LegProbCap > 1 {
		return fmt.Errorf("leg_prob_cap must be in (0, 1], got %v", c.LegProbCap)
	}
	return nil
}

// Candidate is a recommended side that can be staked.
type Candidate struct {
	GameID        string                `json:"game_id"`
	Side          models.Side           `json:"side"`
	AmericanOdds  int                   `json:"american_odds"`
	DecimalOdds   float64               `json:"decimal_odds"`
	ModelProb     float64               `json:"model_prob"`
	ExpectedValue float64               `json:"expected_value"`
	Edge          float64               `json:"edge"`
	KellyFraction float64               `json:"kelly_fraction"`
	Tier          models.ConfidenceTier `json:"confidence_tier"`
}

// CandidateFromResult extracts the recommended side of an evaluation.
func CandidateFromResult(r *edge.Result) (Candidate, bool) {
	rec, ok := r.Recommendation()
	if !ok {
		return Candidate{}, false
	}
	return Candidate{
		GameID:        r.GameID,
		Side:          rec.Side,
		AmericanOdds:  rec.AmericanOdds,
		DecimalOdds:   rec.DecimalOdds,
		ModelProb:     rec.ModelProb,
		ExpectedValue: rec.ExpectedValue,
		Edge:          rec.Edge,
		KellyFraction: rec.KellyFraction,
		Tier:          r.Tier,
	}, true
}

// score ranks candidates for allocation.
func (c Candidate) score() float64 {
	return c.ExpectedValue * c.KellyFraction
}

// Allocation is the stake assigned to one candidate.
type Allocation struct {
	Candidate
	Fraction float64         `json:"fraction"`
	Amount   decimal.Decimal `json:"amount"`
}

// Allocator sizes stakes.
type Allocator struct {
	cfg    Config
	logger *logrus.Logger
}

// NewAllocator creates an allocator.
func NewAllocator(cfg Config, logger *logrus.Logger) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Allocator{cfg: cfg, logger: logger}, nil
}

// Config returns the allocator configuration.
func (a *Allocator) Config() Config {
	return a.cfg
}

// StakeAmount converts a bankroll fraction to currency, rounded down to cents.
func StakeAmount(bankroll decimal.Decimal, fraction float64) decimal.Decimal {
	if fraction <= 0 || !bankroll.IsPositive() {
		return decimal.Zero
	}
	return bankroll.Mul(decimal.NewFromFloat(fraction)).RoundFloor(2)
}

// SingleStake is kellyFraction * bankroll for a recommended side and zero
// for anything else.
func (a *Allocator) SingleStake(c Candidate, bankroll decimal.Decimal) decimal.Decimal {
	if c.Side == models.SideNone || c.ExpectedValue <= 0 {
		return decimal.Zero
	}
	stake := StakeAmount(bankroll, c.KellyFraction)
	a.logger.WithFields(logrus.Fields{
		"game_id":        c.GameID,
		"side":           c.Side,
		"kelly_fraction": c.KellyFraction,
		"bankroll":       bankroll.String(),
		"stake":          stake.String(),
	}).Debug("Single stake calculated")
	return stake
}

// ProportionalAllocate ranks candidates by EV x Kelly, keeps the top N, and
// splits MaxTotalRisk of the bankroll among them: each candidate receives
// kelly_i / sum(kelly) of the budget.
func (a *Allocator) ProportionalAllocate(candidates []Candidate, bankroll decimal.Decimal) []Allocation {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Side != models.SideNone && c.ExpectedValue > 0 && c.KellyFraction > 0 {
			eligible = append(eligible, c)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		si, sj := eligible[i].score(), eligible[j].score()
		if si != sj {
			return si > sj
		}
		return eligible[i].GameID < eligible[j].GameID
	})
	if len(eligible) > a.cfg.TopN {
		eligible = eligible[:a.cfg.TopN]
	}
	if len(eligible) == 0 {
		return nil
	}

	total := 0.0
	for _, c := range eligible {
		total += c.KellyFraction
	}
	budget := a.cfg.MaxTotalRisk

	allocations := make([]Allocation, 0, len(eligible))
	for _, c := range eligible {
		fraction := c.KellyFraction / total * budget
		allocations = append(allocations, Allocation{
			Candidate: c,
			Fraction:  fraction,
			Amount:    StakeAmount(bankroll, fraction),
		})
	}

	a.logger.WithFields(logrus.Fields{
		"candidates":  len(candidates),
		"allocated":   len(allocations),
		"kelly_total": total,
		"risk_budget": budget,
		"bankroll":    bankroll.String(),
	}).Debug("Slate allocation calculated")
	return allocations
}
