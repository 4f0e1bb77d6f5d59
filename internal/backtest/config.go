package backtest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/sports-edge/internal/config"
)

// BacktestConfig extends core config with backtest-specific settings
type BacktestConfig struct {
	League               string          `json:"league"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
	InitialBankroll      decimal.Decimal `json:"initial_bankroll"`
	OutputPath           string          `json:"output_path"`
	MonteCarloIterations int             `json:"monte_carlo_iterations"`
	MonteCarloSeed       int64           `json:"monte_carlo_seed"`
	WindowCount          int             `json:"window_count"`
	PersistResults       bool            `json:"persist_results"`
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig, league string) (BacktestConfig, error) {
	if cfg == nil {
		return BacktestConfig{}, fmt.Errorf("backtest config is required")
	}
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return BacktestConfig{}, fmt.Errorf("invalid end date: %w", err)
	}

	bt := BacktestConfig{
		League:               league,
		StartDate:            start,
		EndDate:              end,
		InitialBankroll:      decimal.NewFromFloat(cfg.InitialBankroll),
		OutputPath:           cfg.OutputPath,
		MonteCarloIterations: cfg.MonteCarloIterations,
		MonteCarloSeed:       cfg.MonteCarloSeed,
		WindowCount:          cfg.WindowCount,
		PersistResults:       cfg.PersistResults,
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.League == "" {
		return fmt.Errorf("league is required")
	}
	if b.StartDate.After(b.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if !b.InitialBankroll.IsPositive() {
		return fmt.Errorf("initial bankroll must be positive")
	}
	if b.MonteCarloIterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	if b.WindowCount < 0 {
		return fmt.Errorf("window count cannot be negative")
	}
	return nil
}

// InWindow reports whether a game date falls inside the betting window.
// EndDate is inclusive for the whole day.
func (b BacktestConfig) InWindow(t time.Time) bool {
	if t.Before(b.StartDate) {
		return false
	}
	return t.Before(b.windowEnd())
}

func (b BacktestConfig) windowEnd() time.Time {
	return b.EndDate.AddDate(0, 0, 1)
}
