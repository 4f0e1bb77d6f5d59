package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Report bundles everything produced by one backtest.
type Report struct {
	Metrics     Metrics            `json:"metrics"`
	MonteCarlo  *MonteCarloResult  `json:"monte_carlo,omitempty"`
	WalkForward *WalkForwardResult `json:"walk_forward,omitempty"`
}

// GenerateConsoleReport formats metrics for terminal output
func GenerateConsoleReport(report Report) string {
	m := report.Metrics
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Backtest Report: %s\n", m.League))
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Window: %s to %s\n", m.StartDate.Format("2006-01-02"), m.EndDate.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("Bankroll: %.2f -> %.2f\n", m.InitialBankroll, m.FinalBankroll))
	builder.WriteString(fmt.Sprintf("Bets: %d (W %d / L %d / P %d)\n", m.TotalBets, m.WinningBets, m.LosingBets, m.PushedBets))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", m.WinRate*100))
	builder.WriteString(fmt.Sprintf("Staked: %.2f  P&L: %.2f\n", m.TotalStaked, m.TotalPnL))
	builder.WriteString(fmt.Sprintf("ROI: %.2f%%\n", m.ROI*100))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%% (%.2f)\n", m.MaxDrawdown*100, m.MaxDrawdownAmount))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", m.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Games Predicted: %d  Skipped: %d\n", m.PredictedGames, m.SkippedGames))
	builder.WriteString(fmt.Sprintf("Brier: %.4f (3-way %.4f)  Log Loss: %.4f  Accuracy: %.2f%%\n", m.BrierScore, m.MultiClassBrier, m.LogLoss, m.Accuracy*100))

	if len(m.Calibration) > 0 {
		builder.WriteString("Calibration:\n")
		for _, b := range m.Calibration {
			builder.WriteString(fmt.Sprintf("  [%.1f, %.1f) n=%d forecast=%.3f observed=%.3f\n", b.Lower, b.Upper, b.Count, b.MeanForecast, b.ObservedRate))
		}
	}
	if mc := report.MonteCarlo; mc != nil {
		builder.WriteString(fmt.Sprintf("Monte Carlo (%d runs): mean return %.2f%%, P(profit) %.2f%%, P(ruin) %.2f%%\n",
			mc.Iterations, mc.MeanReturn*100, mc.ProbabilityOfProfit*100, mc.ProbabilityOfRuin*100))
	}
	if wf := report.WalkForward; wf != nil {
		builder.WriteString(fmt.Sprintf("Walk Forward: %d windows, %.0f%% profitable\n", len(wf.Windows), wf.ConsistencyScore*100))
	}
	return builder.String()
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(m Metrics, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	rows := [][]string{
		{"metric", "value"},
		{"league", m.League},
		{"total_bets", strconv.Itoa(m.TotalBets)},
		{"win_rate", formatFloat(m.WinRate)},
		{"total_staked", formatFloat(m.TotalStaked)},
		{"total_pnl", formatFloat(m.TotalPnL)},
		{"roi", formatFloat(m.ROI)},
		{"max_drawdown", formatFloat(m.MaxDrawdown)},
		{"brier_score", formatFloat(m.BrierScore)},
		{"multiclass_brier", formatFloat(m.MultiClassBrier)},
		{"log_loss", formatFloat(m.LogLoss)},
		{"accuracy", formatFloat(m.Accuracy)},
		{"final_bankroll", formatFloat(m.FinalBankroll)},
	}
	return writeCSV(outputPath, rows)
}

// GenerateLedgerCSV writes one row per bet
func GenerateLedgerCSV(state *BacktestState, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	rows := [][]string{{"bet_id", "game_id", "placed_at", "side", "american_odds", "model_prob", "expected_value", "edge", "tier", "stake", "status", "profit_loss"}}
	for _, bet := range state.Bets {
		rows = append(rows, []string{
			bet.ID.String(),
			bet.GameID,
			bet.PlacedAt.Format("2006-01-02T15:04:05Z07:00"),
			string(bet.Side),
			strconv.Itoa(bet.AmericanOdds),
			formatFloat(bet.ModelProb),
			formatFloat(bet.ExpectedValue),
			formatFloat(bet.Edge),
			string(bet.Tier),
			bet.Stake.StringFixed(2),
			string(bet.Status),
			bet.ProfitLoss.StringFixed(2),
		})
	}
	return writeCSV(outputPath, rows)
}

func writeCSV(outputPath string, rows [][]string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
