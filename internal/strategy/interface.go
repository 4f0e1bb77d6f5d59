package strategy

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/sports-edge/internal/models"
)

// Strategy turns a pre-game rating snapshot and a market quote into betting signals
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, strategyCtx Context) ([]Signal, error)
	ShouldBet(signal Signal) bool
	CalculateStake(signal Signal, bankroll decimal.Decimal) decimal.Decimal
	GetParameters() map[string]interface{}
}

// Signal represents a betting signal emitted by a strategy
type Signal struct {
	GameID        string                `json:"game_id"`
	Side          models.Side           `json:"side"`
	AmericanOdds  int                   `json:"american_odds"`
	DecimalOdds   float64               `json:"decimal_odds"`
	ModelProb     float64               `json:"model_prob"`
	MarketProb    float64               `json:"market_prob"`
	ExpectedValue float64               `json:"expected_value"`
	Edge          float64               `json:"edge"`
	KellyFraction float64               `json:"kelly_fraction"`
	Tier          models.ConfidenceTier `json:"confidence_tier"`
	Reasoning     string                `json:"reasoning"`
	Features      map[string]any        `json:"features,omitempty"`
}

// Context provides the strategy with point-in-time inputs
type Context struct {
	Game        *models.Game
	Snapshot    models.RatingSnapshot
	Quote       *models.MarketQuote
	CurrentTime time.Time
}
