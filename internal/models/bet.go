package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending     BetStatus = "PENDING"
	BetStatusSettledWin  BetStatus = "SETTLED_WIN"
	BetStatusSettledLoss BetStatus = "SETTLED_LOSS"
	BetStatusSettledPush BetStatus = "SETTLED_PUSH"
)

// ConfidenceTier buckets an edge by EV and edge size.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "HIGH"
	TierMedium ConfidenceTier = "MEDIUM"
	TierLow    ConfidenceTier = "LOW"
)

// Bet is a simulated wager on one side of a game.
type Bet struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	GameID        string          `db:"game_id" json:"game_id"`
	League        string          `db:"league" json:"league"`
	Side          Side            `db:"side" json:"side"`
	AmericanOdds  int             `db:"american_odds" json:"american_odds"`
	DecimalOdds   float64         `db:"decimal_odds" json:"decimal_odds"`
	ModelProb     float64         `db:"model_prob" json:"model_prob"`
	ExpectedValue float64         `db:"expected_value" json:"expected_value"`
	Edge          float64         `db:"edge" json:"edge"`
	KellyFraction float64         `db:"kelly_fraction" json:"kelly_fraction"`
	Tier          ConfidenceTier  `db:"tier" json:"tier"`
	Stake         decimal.Decimal `db:"stake" json:"stake"`
	Status        BetStatus       `db:"status" json:"status"`
	ProfitLoss    decimal.Decimal `db:"profit_loss" json:"profit_loss"`
	PlacedAt      time.Time       `db:"placed_at" json:"placed_at"`
}

// IsSettled checks if the bet has left the pending state
func (b *Bet) IsSettled() bool {
	return b.Status != BetStatusPending
}

// IsWin checks if the bet settled as a win
func (b *Bet) IsWin() bool {
	return b.Status == BetStatusSettledWin
}

// IsLoss checks if the bet settled as a loss
func (b *Bet) IsLoss() bool {
	return b.Status == BetStatusSettledLoss
}

// GetROI returns profit over stake for a settled bet
func (b *Bet) GetROI() float64 {
	if b.Stake.IsZero() {
		return 0
	}
	return b.ProfitLoss.Div(b.Stake).InexactFloat64()
}
