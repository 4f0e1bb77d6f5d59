package backtest

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/rating"
	"github.com/yourusername/sports-edge/internal/repository"
)

func seedLeague(t *testing.T, repos *repository.Repositories, league string, n int) {
	t.Helper()
	ctx := context.Background()
	var games []models.Game
	var quotes []models.MarketQuote
	for d := 1; d <= n; d++ {
		g := playedGame(league+"-"+string(rune('a'+d)), d, "HOME", "AWAY", 3, d%3)
		g.League = league
		games = append(games, g)
		quotes = append(quotes, *quoteFor(g, -110, -110))
	}
	require.NoError(t, repos.Game.UpsertBatch(ctx, games))
	require.NoError(t, repos.Quote.InsertBatch(ctx, quotes))
}

func leagueEngine(t *testing.T, repos *repository.Repositories, league string, persist bool) *Engine {
	t.Helper()
	cfg := testConfig(1, 20)
	cfg.League = league
	cfg.PersistResults = persist
	engine, err := NewEngine(cfg, rating.DefaultParams(league), repos, homeStrategy{stake: decimal.NewFromInt(10)}, quietLogger())
	require.NoError(t, err)
	return engine
}

func TestRunLeagues(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	seedLeague(t, repos, "NBA", 10)
	seedLeague(t, repos, "NHL", 6)

	engines := []*Engine{
		leagueEngine(t, repos, "NBA", true),
		leagueEngine(t, repos, "NHL", false),
	}
	results, err := RunLeagues(context.Background(), engines, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "NBA", results[0].League)
	assert.Equal(t, 10, results[0].Metrics.TotalBets)
	assert.Equal(t, "NHL", results[1].League)
	assert.Equal(t, 6, results[1].Metrics.TotalBets)

	// concurrent runs match a sequential one
	_, sequential, err := leagueEngine(t, repos, "NHL", false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sequential.FinalBankroll, results[1].Metrics.FinalBankroll)
	assert.Equal(t, sequential.ParameterHash, results[1].Metrics.ParameterHash)

	runs, err := repos.BacktestRun.GetRecent(context.Background(), "NBA", 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	ratings, err := repos.TeamRating.GetByLeague(context.Background(), "NBA")
	require.NoError(t, err)
	assert.Len(t, ratings, 2)
}

func TestRunLeaguesPropagatesFailure(t *testing.T) {
	repos := repository.NewMemoryRepositories()
	seedLeague(t, repos, "NBA", 3)

	broken, err := NewEngine(testConfig(1, 20), rating.DefaultParams("NBA"), nil, homeStrategy{stake: decimal.NewFromInt(10)}, quietLogger())
	require.NoError(t, err)

	_, err = RunLeagues(context.Background(), []*Engine{leagueEngine(t, repos, "NBA", false), broken}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repositories are required")
}
