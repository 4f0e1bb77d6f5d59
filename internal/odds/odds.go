// Package odds converts American moneyline prices and derives fair
// probabilities, expected value and Kelly stakes from them.
package odds

import (
	"fmt"
	"math"

	"github.com/yourusername/sports-edge/internal/models"
)

const (
	// DefaultKellyCap bounds the full Kelly fraction before the multiplier is applied.
	DefaultKellyCap = 0.05
	// DefaultKellyMultiplier is the fractional Kelly scale (quarter Kelly).
	DefaultKellyMultiplier = 0.25
)

// KellyParams controls how a raw Kelly fraction is turned into a stake fraction.
type KellyParams struct {
	Cap        float64 `json:"cap"`
	Multiplier float64 `json:"multiplier"`
}

// DefaultKellyParams returns the quarter-Kelly defaults.
func DefaultKellyParams() KellyParams {
	return KellyParams{Cap: DefaultKellyCap, Multiplier: DefaultKellyMultiplier}
}

// ValidateAmerican rejects prices that are not valid American odds. Any
// price strictly between -100 and +100 (including 0) is invalid.
func ValidateAmerican(odds int) error {
	if odds > -100 && odds < 100 {
		return fmt.Errorf("%w: %d", models.ErrInvalidOdds, odds)
	}
	return nil
}

// AmericanToImpliedProb returns the raw (vigged) implied probability of a price.
func AmericanToImpliedProb(odds int) (float64, error) {
	if err := ValidateAmerican(odds); err != nil {
		return 0, err
	}
	o := float64(odds)
	if odds < 0 {
		return -o / (-o + 100), nil
	}
	return 100 / (o + 100), nil
}

// AmericanToDecimal returns the total payout per unit staked, stake included.
func AmericanToDecimal(odds int) (float64, error) {
	if err := ValidateAmerican(odds); err != nil {
		return 0, err
	}
	o := float64(odds)
	if odds < 0 {
		return 1 + 100/-o, nil
	}
	return 1 + o/100, nil
}

// DecimalToImpliedProb returns 1/decimal.
func DecimalToImpliedProb(decimalOdds float64) (float64, error) {
	if decimalOdds <= 1 || math.IsNaN(decimalOdds) || math.IsInf(decimalOdds, 0) {
		return 0, fmt.Errorf("%w: decimal %v", models.ErrInvalidOdds, decimalOdds)
	}
	return 1 / decimalOdds, nil
}

// DecimalToAmerican converts a decimal price back to American odds, rounded
// to the nearest integer.
func DecimalToAmerican(decimalOdds float64) (int, error) {
	if decimalOdds <= 1 || math.IsNaN(decimalOdds) || math.IsInf(decimalOdds, 0) {
		return 0, fmt.Errorf("%w: decimal %v", models.ErrInvalidOdds, decimalOdds)
	}
	if decimalOdds >= 2 {
		return int(math.Round((decimalOdds - 1) * 100)), nil
	}
	return int(math.Round(-100 / (decimalOdds - 1))), nil
}

// FairDecimalOdds returns the decimal price at which a bet with probability p has zero EV.
func FairDecimalOdds(p float64) float64 {
	if p <= 0 {
		return math.Inf(1)
	}
	return 1 / p
}

// DeVig rescales raw implied probabilities so they sum to 1. It works for
// any number of outcomes.
func DeVig(probs ...float64) ([]float64, error) {
	if len(probs) == 0 {
		return nil, fmt.Errorf("%w: no outcomes", models.ErrDegenerateMarket)
	}
	total := 0.0
	for _, p := range probs {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%w: implied probability %v", models.ErrDegenerateMarket, p)
		}
		total += p
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: implied probabilities sum to %v", models.ErrDegenerateMarket, total)
	}

	fair := make([]float64, len(probs))
	for i, p := range probs {
		fair[i] = p / total
	}
	return fair, nil
}

// ExpectedValue is the expected profit per unit staked: p*decimal - 1.
func ExpectedValue(p, decimalOdds float64) float64 {
	return p*decimalOdds - 1
}

// RawKelly is the full Kelly fraction (p(d-1) - (1-p)) / (d-1), unclamped.
func RawKelly(p, decimalOdds float64) float64 {
	b := decimalOdds - 1
	if b <= 0 {
		return 0
	}
	return (p*b - (1 - p)) / b
}

// KellyFraction clamps the full Kelly fraction to [0, cap] and scales it by
// the multiplier. The result never exceeds cap.
func KellyFraction(p, decimalOdds float64, params KellyParams) float64 {
	f := RawKelly(p, decimalOdds)
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	if f > params.Cap {
		f = params.Cap
	}
	f *= params.Multiplier
	if f > params.Cap {
		f = params.Cap
	}
	return f
}

// EdgeReport describes one side of a market against a model probability.
type EdgeReport struct {
	Side          models.Side `json:"side"`
	AmericanOdds  int         `json:"american_odds"`
	DecimalOdds   float64     `json:"decimal_odds"`
	ModelProb     float64     `json:"model_prob"`
	ImpliedProb   float64     `json:"implied_prob"`
	MarketProb    float64     `json:"market_prob"`
	ExpectedValue float64     `json:"expected_value"`
	// Edge is model minus de-vigged market probability, in percentage points.
	Edge          float64 `json:"edge"`
	KellyFraction float64 `json:"kelly_fraction"`
}

// FairProbabilities de-vigs every priced side of a quote.
func FairProbabilities(q models.MarketQuote) (map[models.Side]float64, error) {
	sides := q.Sides()
	implied := make([]float64, 0, len(sides))
	for _, side := range sides {
		price, _ := q.OddsFor(side)
		p, err := AmericanToImpliedProb(price)
		if err != nil {
			return nil, fmt.Errorf("%s price: %w", side, err)
		}
		implied = append(implied, p)
	}

	fair, err := DeVig(implied...)
	if err != nil {
		return nil, err
	}

	out := make(map[models.Side]float64, len(sides))
	for i, side := range sides {
		out[side] = fair[i]
	}
	return out, nil
}

// ComputeEdge composes conversion, de-vig, EV and Kelly for one side of a quote.
func ComputeEdge(modelProb float64, side models.Side, q models.MarketQuote, params KellyParams) (EdgeReport, error) {
	price, ok := q.OddsFor(side)
	if !ok {
		return EdgeReport{}, fmt.Errorf("%w: side %q not priced for game %s", models.ErrInvalidOdds, side, q.GameID)
	}

	fair, err := FairProbabilities(q)
	if err != nil {
		return EdgeReport{}, err
	}
	implied, err := AmericanToImpliedProb(price)
	if err != nil {
		return EdgeReport{}, err
	}
	dec, err := AmericanToDecimal(price)
	if err != nil {
		return EdgeReport{}, err
	}

	marketProb := fair[side]
	return EdgeReport{
		Side:          side,
		AmericanOdds:  price,
		DecimalOdds:   dec,
		ModelProb:     modelProb,
		ImpliedProb:   implied,
		MarketProb:    marketProb,
		ExpectedValue: ExpectedValue(modelProb, dec),
		Edge:          (modelProb - marketProb) * 100,
		KellyFraction: KellyFraction(modelProb, dec, params),
	}, nil
}
