package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yourusername/sports-edge/internal/models"
)

// WalkForwardWindow is one out-of-sample betting window. Ratings entering
// the window have been built from every earlier game.
type WalkForwardWindow struct {
	WindowID  int       `json:"window_id"`
	TestStart time.Time `json:"test_start"`
	TestEnd   time.Time `json:"test_end"`
	Metrics   Metrics   `json:"metrics"`
}

// WalkForwardResult represents the per-window breakdown of a backtest
type WalkForwardResult struct {
	Windows           []WalkForwardWindow `json:"windows"`
	AggregatedMetrics Metrics             `json:"aggregated_metrics"`
	ConsistencyScore  float64             `json:"consistency_score"`
}

// RunWalkForward splits the engine's date range into equal consecutive
// windows and replays each one separately with a fresh bankroll.
func RunWalkForward(ctx context.Context, engine *Engine, games []models.Game, quotes map[string]*models.MarketQuote, windowCount int) (WalkForwardResult, error) {
	if engine == nil {
		return WalkForwardResult{}, fmt.Errorf("engine is required")
	}
	if windowCount <= 0 {
		return WalkForwardResult{}, fmt.Errorf("window count must be positive")
	}

	base := engine.Config()
	totalDays := int(base.EndDate.Sub(base.StartDate).Hours()/24) + 1
	step := totalDays / windowCount
	if step < 1 {
		step = 1
	}

	var windows []WalkForwardWindow
	for i := 0; i < windowCount; i++ {
		start := base.StartDate.AddDate(0, 0, i*step)
		if start.After(base.EndDate) {
			break
		}
		end := start.AddDate(0, 0, step-1)
		if i == windowCount-1 || end.After(base.EndDate) {
			end = base.EndDate
		}

		cfg := base
		cfg.StartDate, cfg.EndDate = start, end
		windowEngine, err := engine.WithConfig(cfg)
		if err != nil {
			return WalkForwardResult{}, err
		}
		state, err := windowEngine.Replay(ctx, games, quotes)
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("window %d: %w", i+1, err)
		}

		windows = append(windows, WalkForwardWindow{
			WindowID:  i + 1,
			TestStart: start,
			TestEnd:   end,
			Metrics:   CalculateMetrics(state, cfg),
		})
	}

	return WalkForwardResult{
		Windows:           windows,
		AggregatedMetrics: aggregateWalkForward(windows),
		ConsistencyScore:  CalculateConsistency(windows),
	}, nil
}

// CalculateConsistency calculates the share of windows with a positive ROI
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	profitable := 0
	for _, w := range windows {
		if w.Metrics.ROI > 0 {
			profitable++
		}
	}
	return float64(profitable) / float64(len(windows))
}

func aggregateWalkForward(windows []WalkForwardWindow) Metrics {
	if len(windows) == 0 {
		return Metrics{}
	}
	metrics := Metrics{}
	for _, w := range windows {
		metrics.TotalBets += w.Metrics.TotalBets
		metrics.ROI += w.Metrics.ROI
		metrics.MaxDrawdown += w.Metrics.MaxDrawdown
		metrics.BrierScore += w.Metrics.BrierScore
	}
	n := float64(len(windows))
	metrics.ROI /= n
	metrics.MaxDrawdown /= n
	metrics.BrierScore /= n
	return metrics
}

// ToJSON exports walk-forward result
func (w WalkForwardResult) ToJSON() string {
	data, _ := json.Marshal(w)
	return string(data)
}
