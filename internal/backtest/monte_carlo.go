package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/yourusername/sports-edge/internal/models"
)

// MonteCarloConfig configures monte carlo simulation
type MonteCarloConfig struct {
	Iterations      int
	Seed            int64
	InitialBankroll float64
}

// MonteCarloResult represents monte carlo outcomes
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	Seed                int64              `json:"seed"`
	MeanReturn          float64            `json:"mean_return"`
	StdReturn           float64            `json:"std_return"`
	VaR95               float64            `json:"var_95"`
	VaR99               float64            `json:"var_99"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	ConfidenceIntervals map[string]float64 `json:"confidence_intervals"`
	Distribution        []float64          `json:"-"`
}

// RunMonteCarlo replays the bet ledger many times, drawing each outcome from
// the model probability recorded on the bet. Stakes are kept as placed;
// pushes stay pushes. A fixed seed gives a reproducible distribution.
func RunMonteCarlo(ctx context.Context, bets []*models.Bet, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1000
	}
	if cfg.InitialBankroll <= 0 {
		return MonteCarloResult{}, fmt.Errorf("initial bankroll must be positive")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	distribution := make([]float64, cfg.Iterations)

	for i := 0; i < cfg.Iterations; i++ {
		if i%100 == 0 {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, err
			}
		}
		bankroll := cfg.InitialBankroll
		for _, bet := range bets {
			if bet.Status == models.BetStatusSettledPush {
				continue
			}
			stake := bet.Stake.InexactFloat64()
			if rng.Float64() < bet.ModelProb {
				bankroll += stake * (bet.DecimalOdds - 1)
			} else {
				bankroll -= stake
			}
			if bankroll <= 0 {
				bankroll = 0
				break
			}
		}
		distribution[i] = bankroll
	}

	mean, std := meanStd(distribution)
	var95 := percentile(distribution, 0.05)
	var99 := percentile(distribution, 0.01)

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		Seed:                cfg.Seed,
		MeanReturn:          (mean - cfg.InitialBankroll) / cfg.InitialBankroll,
		StdReturn:           std / cfg.InitialBankroll,
		VaR95:               (var95 - cfg.InitialBankroll) / cfg.InitialBankroll,
		VaR99:               (var99 - cfg.InitialBankroll) / cfg.InitialBankroll,
		ProbabilityOfProfit: probabilityAbove(distribution, cfg.InitialBankroll),
		ProbabilityOfRuin:   probabilityAtOrBelow(distribution, 0),
		ConfidenceIntervals: CalculateConfidenceIntervals(distribution, []float64{0.9, 0.95, 0.99}),
		Distribution:        distribution,
	}, nil
}

// CalculateConfidenceIntervals computes confidence interval widths for a distribution
func CalculateConfidenceIntervals(distribution []float64, levels []float64) map[string]float64 {
	results := make(map[string]float64)
	for _, level := range levels {
		p := (1.0 - level) / 2.0
		low := percentile(distribution, p)
		high := percentile(distribution, 1.0-p)
		results[formatPercent(level)] = high - low
	}
	return results
}

// ToJSON exports the result without the raw distribution
func (m MonteCarloResult) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := average(values)
	return mean, stddev(values)
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	valuesCopy := append([]float64{}, values...)
	sort.Float64s(valuesCopy)
	idx := int(math.Floor(p * float64(len(valuesCopy)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(valuesCopy) {
		idx = len(valuesCopy) - 1
	}
	return valuesCopy[idx]
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func probabilityAtOrBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("%.0f%%", level*100)
}
