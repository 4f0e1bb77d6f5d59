package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger logs live slate evaluation and rating refreshes.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogRatingsRefreshed logs a rebuilt rating table.
func (pl *PredictionLogger) LogRatingsRefreshed(league string, gamesApplied, teams int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"league":        league,
		"games_applied": gamesApplied,
		"teams":         teams,
		"duration_ms":   durationMs,
	}).Info("Ratings refreshed")
}

// LogSlateEvaluated logs one evaluated slate.
func (pl *PredictionLogger) LogSlateEvaluated(league string, games, recommendations int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"league":          league,
		"games":           games,
		"recommendations": recommendations,
		"duration_ms":     durationMs,
	}).Info("Slate evaluated")
}

// LogRecommendation logs a single recommended side.
func (pl *PredictionLogger) LogRecommendation(gameID, side string, americanOdds int, expectedValue, edge, kelly float64, tier string) {
	pl.WithFields(logrus.Fields{
		"game_id":        gameID,
		"side":           side,
		"american_odds":  americanOdds,
		"expected_value": expectedValue,
		"edge":           edge,
		"kelly_fraction": kelly,
		"tier":           tier,
	}).Info("Edge recommendation")
}

// LogQuoteRejected logs a quote that could not be evaluated.
func (pl *PredictionLogger) LogQuoteRejected(gameID string, err error) {
	pl.WithField("game_id", gameID).WithError(err).Warn("Quote rejected")
}
