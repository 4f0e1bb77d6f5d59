package backtest

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// LeagueResult is the outcome of one league's run.
type LeagueResult struct {
	League  string
	State   *BacktestState
	Metrics Metrics
}

// RunLeagues runs one engine per league concurrently. Engines share nothing,
// so results match sequential runs. limit bounds concurrency; zero or less
// means no limit. The first failure cancels the remaining runs.
func RunLeagues(ctx context.Context, engines []*Engine, limit int) ([]LeagueResult, error) {
	results := make([]LeagueResult, len(engines))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, engine := range engines {
		i, engine := i, engine
		g.Go(func() error {
			state, m, err := engine.Run(gctx)
			if err != nil {
				return fmt.Errorf("backtest %s: %w", engine.Config().League, err)
			}
			results[i] = LeagueResult{League: engine.Config().League, State: state, Metrics: m}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
