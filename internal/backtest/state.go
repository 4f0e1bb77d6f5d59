package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/sports-edge/internal/models"
)

// PredictionRecord is a pre-game prediction paired with the result, used for
// probability scoring.
type PredictionRecord struct {
	GameID  string         `json:"game_id"`
	Date    time.Time      `json:"date"`
	PHome   float64        `json:"p_home"`
	PAway   float64        `json:"p_away"`
	PDraw   float64        `json:"p_draw"`
	Outcome models.Outcome `json:"outcome"`
}

// HomeWon is the binary target for the home-win probability.
func (p PredictionRecord) HomeWon() float64 {
	if p.Outcome == models.OutcomeHome {
		return 1
	}
	return 0
}

// SkippedGame records a game that could not be bet.
type SkippedGame struct {
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// BacktestState tracks current backtest state
type BacktestState struct {
	InitialBankroll decimal.Decimal
	CurrentBankroll decimal.Decimal
	PeakBankroll    decimal.Decimal
	Bets            []*models.Bet
	Predictions     []PredictionRecord
	Skipped         []SkippedGame
	EquityCurve     EquityCurve
	DailyPnL        map[time.Time]decimal.Decimal
	FinalRatings    []models.TeamRating
}

// NewBacktestState initializes backtest state
func NewBacktestState(initialBankroll decimal.Decimal, start time.Time) *BacktestState {
	state := &BacktestState{
		InitialBankroll: initialBankroll,
		CurrentBankroll: initialBankroll,
		PeakBankroll:    initialBankroll,
		Bets:            []*models.Bet{},
		DailyPnL:        make(map[time.Time]decimal.Decimal),
	}
	state.RecordEquityPoint(start, initialBankroll)
	return state
}

// UpdateState updates the bankroll and state with a settled bet
func (s *BacktestState) UpdateState(bet *models.Bet) {
	pnl := bet.ProfitLoss
	s.CurrentBankroll = s.CurrentBankroll.Add(pnl)
	if s.CurrentBankroll.GreaterThan(s.PeakBankroll) {
		s.PeakBankroll = s.CurrentBankroll
	}
	s.Bets = append(s.Bets, bet)

	day := time.Date(bet.PlacedAt.Year(), bet.PlacedAt.Month(), bet.PlacedAt.Day(), 0, 0, 0, 0, bet.PlacedAt.Location())
	s.DailyPnL[day] = s.DailyPnL[day].Add(pnl)
}

// GetCurrentDrawdown calculates peak-to-trough drawdown
func (s *BacktestState) GetCurrentDrawdown() float64 {
	if !s.PeakBankroll.IsPositive() {
		return 0
	}
	drawdown := s.PeakBankroll.Sub(s.CurrentBankroll).Div(s.PeakBankroll).InexactFloat64()
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds an equity point to the curve
func (s *BacktestState) RecordEquityPoint(t time.Time, value decimal.Decimal) {
	v := value.InexactFloat64()
	peak := s.PeakBankroll.InexactFloat64()
	drawdown := 0.0
	if v < peak && peak > 0 {
		drawdown = (peak - v) / peak
	}

	pnl := 0.0
	if n := len(s.EquityCurve); n > 0 {
		pnl = v - s.EquityCurve[n-1].Value
	}
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    v,
		Drawdown: drawdown,
		PnL:      pnl,
	})
}

// RecordSkip notes a game that was left out of betting.
func (s *BacktestState) RecordSkip(gameID, reason string) {
	s.Skipped = append(s.Skipped, SkippedGame{GameID: gameID, Reason: reason})
}
