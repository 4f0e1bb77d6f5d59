package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for backtest replays.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a logger scoped to one league's backtest.
func NewBacktestLogger(baseLogger *logrus.Logger, league string) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component": "backtest",
			"league":    league,
		}),
	}
}

// LogGameSkipped logs a game left out of betting. Skips are expected, so
// they go out at debug unless an error caused them.
func (bl *BacktestLogger) LogGameSkipped(gameID, reason string, err error) {
	entry := bl.WithFields(logrus.Fields{
		"game_id": gameID,
		"reason":  reason,
	})
	if err != nil {
		entry.WithError(err).Warn("Game skipped")
		return
	}
	entry.Debug("Game skipped")
}

// LogBetPlaced logs a bet entering the ledger.
func (bl *BacktestLogger) LogBetPlaced(gameID, side string, americanOdds int, stake, expectedValue float64, tier string) {
	bl.WithFields(logrus.Fields{
		"game_id":        gameID,
		"side":           side,
		"american_odds":  americanOdds,
		"stake":          stake,
		"expected_value": expectedValue,
		"tier":           tier,
	}).Debug("Bet placed")
}

// LogBetSettled logs a settled bet and the resulting bankroll.
func (bl *BacktestLogger) LogBetSettled(gameID, status string, profitLoss, bankroll float64) {
	bl.WithFields(logrus.Fields{
		"game_id":     gameID,
		"status":      status,
		"profit_loss": profitLoss,
		"bankroll":    bankroll,
	}).Debug("Bet settled")
}

// LogRunCompleted logs the headline numbers of a finished run.
func (bl *BacktestLogger) LogRunCompleted(totalBets, skipped int, roi, maxDrawdown, brier float64) {
	bl.WithFields(logrus.Fields{
		"total_bets":   totalBets,
		"skipped":      skipped,
		"roi":          roi,
		"max_drawdown": maxDrawdown,
		"brier_score":  brier,
	}).Info("Backtest run completed")
}
