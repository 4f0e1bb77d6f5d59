package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/yourusername/sports-edge/internal/models"
)

// BaseStrategy provides shared functionality for strategies
type BaseStrategy struct {
	MinDecimalOdds float64
	MaxDecimalOdds float64
	// SkipInsufficientData drops games where a team has no rating history.
	SkipInsufficientData bool
}

// ValidateOdds ensures decimal odds are within acceptable bounds
func (b *BaseStrategy) ValidateOdds(odds float64) error {
	if odds <= 1.0 {
		return fmt.Errorf("odds must be greater than 1.0")
	}
	if b.MinDecimalOdds > 0 && odds < b.MinDecimalOdds {
		return fmt.Errorf("odds below minimum")
	}
	if b.MaxDecimalOdds > 0 && odds > b.MaxDecimalOdds {
		return fmt.Errorf("odds above maximum")
	}
	return nil
}

// ValidateTemporalSafety ensures the quote was available before the decision time
func (b *BaseStrategy) ValidateTemporalSafety(currentTime time.Time, quote *models.MarketQuote) error {
	if quote == nil || quote.Timestamp.IsZero() || currentTime.IsZero() {
		return nil
	}
	if quote.Timestamp.After(currentTime) {
		return fmt.Errorf("temporal safety violation: quote timestamp %s after %s", quote.Timestamp, currentTime)
	}
	return nil
}

// NormalizeProbability ensures probability in [0,1]
func (b *BaseStrategy) NormalizeProbability(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// NormalizeProbabilities clamps each outcome probability into [0,1]
func (b *BaseStrategy) NormalizeProbabilities(p models.Probabilities) models.Probabilities {
	return models.Probabilities{
		Home: b.NormalizeProbability(p.Home),
		Away: b.NormalizeProbability(p.Away),
		Draw: b.NormalizeProbability(p.Draw),
	}
}
