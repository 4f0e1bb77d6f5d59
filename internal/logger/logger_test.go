package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger(buf, "debug", "json")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	_, ok := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)

	log = newLogger(buf, "not-a-level", "text")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestBacktestLoggerBetPlaced(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log, "NBA")

	btLogger.LogBetPlaced("g1", "home", 150, 50, 0.12, "MEDIUM")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "NBA", logEntry["league"])
	assert.Equal(t, "g1", logEntry["game_id"])
	assert.Equal(t, float64(150), logEntry["american_odds"])
	assert.Equal(t, "debug", logEntry["level"])
}

func TestBacktestLoggerSkipWithError(t *testing.T) {
	log, buf := setupTestLogger()
	btLogger := NewBacktestLogger(log, "NHL")

	btLogger.LogGameSkipped("g7", "invalid_quote", errors.New("invalid odds"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "invalid odds", logEntry["error"])
	assert.Equal(t, "invalid_quote", logEntry["reason"])
}

func TestBacktestLoggerRunCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	NewBacktestLogger(log, "EPL").LogRunCompleted(12, 3, 0.05, 0.1, 0.21)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(12), logEntry["total_bets"])
	assert.Equal(t, 0.21, logEntry["brier_score"])
	assert.Equal(t, "Backtest run completed", logEntry["msg"])
}

func TestPredictionLoggerRecommendation(t *testing.T) {
	log, buf := setupTestLogger()
	NewPredictionLogger(log).LogRecommendation("g2", "away", -120, 0.07, 9.5, 0.02, "MEDIUM")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "prediction", logEntry["component"])
	assert.Equal(t, "away", logEntry["side"])
	assert.Equal(t, 9.5, logEntry["edge"])
}

func TestPredictionLoggerRatingsRefreshed(t *testing.T) {
	log, buf := setupTestLogger()
	NewPredictionLogger(log).LogRatingsRefreshed("NBA", 1230, 30, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1230), logEntry["games_applied"])
	assert.Equal(t, "info", logEntry["level"])
}
