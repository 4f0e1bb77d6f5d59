package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/sports-edge/internal/models"
)

const (
	calibrationBins = 5
	logLossEpsilon  = 1e-15
)

// CalibrationBin compares predicted and observed home-win rates for one
// probability bucket.
type CalibrationBin struct {
	Lower        float64 `json:"lower"`
	Upper        float64 `json:"upper"`
	Count        int     `json:"count"`
	MeanForecast float64 `json:"mean_forecast"`
	ObservedRate float64 `json:"observed_rate"`
}

// Metrics represents backtest performance metrics
type Metrics struct {
	League            string           `json:"league"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	InitialBankroll   float64          `json:"initial_bankroll"`
	FinalBankroll     float64          `json:"final_bankroll"`
	TotalReturn       float64          `json:"total_return"`
	TotalBets         int              `json:"total_bets"`
	WinningBets       int              `json:"winning_bets"`
	LosingBets        int              `json:"losing_bets"`
	PushedBets        int              `json:"pushed_bets"`
	WinRate           float64          `json:"win_rate"`
	TotalStaked       float64          `json:"total_staked"`
	TotalPnL          float64          `json:"total_pnl"`
	ROI               float64          `json:"roi"`
	MaxDrawdown       float64          `json:"max_drawdown"`
	MaxDrawdownAmount float64          `json:"max_drawdown_amount"`
	Volatility        float64          `json:"volatility"`
	SharpeRatio       float64          `json:"sharpe_ratio"`
	SortinoRatio      float64          `json:"sortino_ratio"`
	ProfitFactor      float64          `json:"profit_factor"`
	AverageWin        float64          `json:"average_win"`
	AverageLoss       float64          `json:"average_loss"`
	Expectancy        float64          `json:"expectancy"`
	LargestWin        float64          `json:"largest_win"`
	LargestLoss       float64          `json:"largest_loss"`
	PredictedGames    int              `json:"predicted_games"`
	SkippedGames      int              `json:"skipped_games"`
	BrierScore        float64          `json:"brier_score"`
	MultiClassBrier   float64          `json:"multiclass_brier"`
	LogLoss           float64          `json:"log_loss"`
	Accuracy          float64          `json:"accuracy"`
	Calibration       []CalibrationBin `json:"calibration"`
	ParameterHash     string           `json:"parameter_hash"`
}

// CalculateMetrics calculates metrics from backtest state
func CalculateMetrics(state *BacktestState, cfg BacktestConfig) Metrics {
	m := Metrics{
		League:          cfg.League,
		StartDate:       cfg.StartDate,
		EndDate:         cfg.EndDate,
		InitialBankroll: cfg.InitialBankroll.InexactFloat64(),
		FinalBankroll:   cfg.InitialBankroll.InexactFloat64(),
	}
	if state == nil {
		return m
	}

	m.InitialBankroll = state.InitialBankroll.InexactFloat64()
	m.FinalBankroll = state.CurrentBankroll.InexactFloat64()
	if state.InitialBankroll.IsPositive() {
		m.TotalReturn = state.CurrentBankroll.Sub(state.InitialBankroll).Div(state.InitialBankroll).InexactFloat64()
	}

	m.TotalBets = len(state.Bets)
	staked, pnl := decimal.Zero, decimal.Zero
	for _, bet := range state.Bets {
		staked = staked.Add(bet.Stake)
		pnl = pnl.Add(bet.ProfitLoss)
		switch bet.Status {
		case models.BetStatusSettledWin:
			m.WinningBets++
		case models.BetStatusSettledLoss:
			m.LosingBets++
		case models.BetStatusSettledPush:
			m.PushedBets++
		}
	}
	m.TotalStaked = staked.InexactFloat64()
	m.TotalPnL = pnl.InexactFloat64()
	if staked.IsPositive() {
		m.ROI = pnl.Div(staked).InexactFloat64()
	}
	m.WinRate = calculateWinRate(m.WinningBets, m.WinningBets+m.LosingBets)

	m.MaxDrawdown, m.MaxDrawdownAmount = state.EquityCurve.MaxDrawdown()
	returns := state.EquityCurve.GetReturns()
	m.Volatility = state.EquityCurve.GetVolatility()
	m.SharpeRatio = calculateSharpeRatio(returns)
	m.SortinoRatio = calculateSortinoRatio(returns, state.EquityCurve.GetDownsideDeviation())

	m.AverageWin, m.AverageLoss, m.LargestWin, m.LargestLoss = calculateBetStats(state.Bets)
	m.ProfitFactor = calculateProfitFactor(state.Bets)
	m.Expectancy = calculateExpectancy(state.Bets)

	m.PredictedGames = len(state.Predictions)
	m.SkippedGames = len(state.Skipped)
	m.BrierScore = BrierScore(state.Predictions)
	m.MultiClassBrier = MultiClassBrierScore(state.Predictions)
	m.LogLoss = LogLoss(state.Predictions)
	m.Accuracy = Accuracy(state.Predictions)
	m.Calibration = CalibrationTable(state.Predictions, calibrationBins)

	return m
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

// BrierScore is the mean squared error of the home-win probability over every
// predicted game.
func BrierScore(preds []PredictionRecord) float64 {
	if len(preds) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range preds {
		diff := p.PHome - p.HomeWon()
		sum += diff * diff
	}
	return sum / float64(len(preds))
}

// MultiClassBrierScore is the mean over games of the squared error summed
// across the home, draw and away outcomes. It ranges over [0, 2]; for
// leagues without draws it is twice the binary score.
func MultiClassBrierScore(preds []PredictionRecord) float64 {
	if len(preds) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range preds {
		var home, draw, away float64
		switch p.Outcome {
		case models.OutcomeHome:
			home = 1
		case models.OutcomeDraw:
			draw = 1
		case models.OutcomeAway:
			away = 1
		}
		sum += (p.PHome-home)*(p.PHome-home) + (p.PDraw-draw)*(p.PDraw-draw) + (p.PAway-away)*(p.PAway-away)
	}
	return sum / float64(len(preds))
}

// LogLoss is the binary cross-entropy of the home-win probability.
func LogLoss(preds []PredictionRecord) float64 {
	if len(preds) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range preds {
		q := math.Min(math.Max(p.PHome, logLossEpsilon), 1-logLossEpsilon)
		if p.HomeWon() == 1 {
			sum -= math.Log(q)
		} else {
			sum -= math.Log(1 - q)
		}
	}
	return sum / float64(len(preds))
}

// Accuracy is the share of games where the home-win call at 0.5 was right.
func Accuracy(preds []PredictionRecord) float64 {
	if len(preds) == 0 {
		return 0
	}
	correct := 0
	for _, p := range preds {
		if (p.PHome >= 0.5) == (p.HomeWon() == 1) {
			correct++
		}
	}
	return float64(correct) / float64(len(preds))
}

// CalibrationTable buckets predictions into equal-width probability bins.
// Empty bins are omitted.
func CalibrationTable(preds []PredictionRecord, bins int) []CalibrationBin {
	if bins <= 0 || len(preds) == 0 {
		return nil
	}
	width := 1.0 / float64(bins)
	table := make([]CalibrationBin, bins)
	for i := range table {
		table[i].Lower = float64(i) * width
		table[i].Upper = float64(i+1) * width
	}
	for _, p := range preds {
		idx := int(p.PHome / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		table[idx].Count++
		table[idx].MeanForecast += p.PHome
		table[idx].ObservedRate += p.HomeWon()
	}

	out := make([]CalibrationBin, 0, bins)
	for _, b := range table {
		if b.Count == 0 {
			continue
		}
		b.MeanForecast /= float64(b.Count)
		b.ObservedRate /= float64(b.Count)
		out = append(out, b)
	}
	return out
}

func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std
}

func calculateSortinoRatio(returns []float64, downside float64) float64 {
	if len(returns) == 0 || downside == 0 {
		return 0
	}
	return average(returns) / downside
}

func calculateProfitFactor(bets []*models.Bet) float64 {
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, bet := range bets {
		if bet.ProfitLoss.IsPositive() {
			grossProfit = grossProfit.Add(bet.ProfitLoss)
		} else {
			grossLoss = grossLoss.Add(bet.ProfitLoss.Abs())
		}
	}
	if grossLoss.IsZero() {
		if grossProfit.IsPositive() {
			return 999
		}
		return 0
	}
	return grossProfit.Div(grossLoss).InexactFloat64()
}

func calculateExpectancy(bets []*models.Bet) float64 {
	if len(bets) == 0 {
		return 0
	}
	net := decimal.Zero
	for _, bet := range bets {
		net = net.Add(bet.ProfitLoss)
	}
	return net.InexactFloat64() / float64(len(bets))
}

func calculateBetStats(bets []*models.Bet) (float64, float64, float64, float64) {
	wins, losses := 0, 0
	winSum, lossSum := 0.0, 0.0
	largestWin, largestLoss := 0.0, 0.0
	for _, bet := range bets {
		pl := bet.ProfitLoss.InexactFloat64()
		if pl > 0 {
			wins++
			winSum += pl
			if pl > largestWin {
				largestWin = pl
			}
		} else if pl < 0 {
			losses++
			lossSum += pl
			if pl < largestLoss {
				largestLoss = pl
			}
		}
	}

	avgWin, avgLoss := 0.0, 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return avgWin, avgLoss, largestWin, largestLoss
}

func calculateWinRate(wins, decided int) float64 {
	if decided == 0 {
		return 0
	}
	return float64(wins) / float64(decided)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

// HashParameters creates a stable hash for parameter maps
func HashParameters(params map[string]interface{}) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
