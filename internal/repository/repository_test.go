package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/database"
	"github.com/yourusername/sports-edge/internal/models"
)

func intPtr(v int) *int { return &v }

func at(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func fixtures() ([]models.Game, []models.MarketQuote) {
	games := []models.Game{
		{ID: "b", League: "NBA", Date: at(2, 19), HomeTeam: "BOS", AwayTeam: "NYK", HomeScore: intPtr(101), AwayScore: intPtr(99)},
		{ID: "a", League: "NBA", Date: at(2, 19), HomeTeam: "LAL", AwayTeam: "GSW", HomeScore: intPtr(90), AwayScore: intPtr(95)},
		{ID: "c", League: "NBA", Date: at(1, 19), HomeTeam: "NYK", AwayTeam: "LAL", HomeScore: intPtr(100), AwayScore: intPtr(98)},
		{ID: "d", League: "NBA", Date: at(5, 19), HomeTeam: "GSW", AwayTeam: "BOS"},
		{ID: "x", League: "NHL", Date: at(2, 19), HomeTeam: "TOR", AwayTeam: "MTL"},
	}
	quotes := []models.MarketQuote{
		{GameID: "a", Book: "pinnacle", Timestamp: at(2, 12), HomeOdds: -120, AwayOdds: 110},
		{GameID: "a", Book: "pinnacle", Timestamp: at(2, 18), HomeOdds: -130, AwayOdds: 115},
		// recorded after tip-off, never a closing line
		{GameID: "a", Book: "pinnacle", Timestamp: at(2, 20), HomeOdds: 200, AwayOdds: -240},
		{GameID: "b", Book: "fanduel", Timestamp: at(2, 18), HomeOdds: -150, AwayOdds: 130},
		{GameID: "b", Book: "draftkings", Timestamp: at(2, 18), HomeOdds: -145, AwayOdds: 125},
	}
	return games, quotes
}

func seed(t *testing.T, repos *Repositories) {
	t.Helper()
	games, quotes := fixtures()
	ctx := context.Background()
	require.NoError(t, repos.Game.UpsertBatch(ctx, games))
	require.NoError(t, repos.Quote.InsertBatch(ctx, quotes))
}

// exerciseRepositories runs the shared behaviour checks against any implementation.
func exerciseRepositories(t *testing.T, repos *Repositories) {
	ctx := context.Background()
	seed(t, repos)

	t.Run("games are ordered by date then id", func(t *testing.T) {
		games, err := repos.Game.GetByLeague(ctx, "NBA", at(10, 0))
		require.NoError(t, err)
		ids := make([]string, len(games))
		for i, g := range games {
			ids[i] = g.ID
		}
		assert.Equal(t, []string{"c", "a", "b", "d"}, ids)
		assert.Nil(t, games[3].HomeScore)
	})

	t.Run("history stops before until", func(t *testing.T) {
		games, err := repos.Game.GetByLeague(ctx, "NBA", at(2, 19))
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "c", games[0].ID)
	})

	t.Run("schedule window", func(t *testing.T) {
		games, err := repos.Game.GetSchedule(ctx, "NBA", at(3, 0), at(6, 0))
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "d", games[0].ID)
	})

	t.Run("missing game", func(t *testing.T) {
		_, err := repos.Game.GetByID(ctx, "nope")
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("upsert records the final score", func(t *testing.T) {
		g, err := repos.Game.GetByID(ctx, "d")
		require.NoError(t, err)
		g.HomeScore, g.AwayScore = intPtr(110), intPtr(104)
		require.NoError(t, repos.Game.Upsert(ctx, g))

		got, err := repos.Game.GetByID(ctx, "d")
		require.NoError(t, err)
		outcome, played := got.Winner()
		assert.True(t, played)
		assert.Equal(t, models.OutcomeHome, outcome)
	})

	t.Run("closing quotes ignore post-start prices", func(t *testing.T) {
		quotes, err := repos.Quote.GetClosing(ctx, "NBA", at(1, 0), at(3, 0))
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, -130, quotes["a"].HomeOdds)
		// equal timestamps resolve by book name
		assert.Equal(t, "draftkings", quotes["b"].Book)
		assert.NotContains(t, quotes, "c")
	})

	t.Run("latest quote as of a time", func(t *testing.T) {
		q, err := repos.Quote.GetLatest(ctx, "a", at(2, 13))
		require.NoError(t, err)
		assert.Equal(t, -120, q.HomeOdds)

		_, err = repos.Quote.GetLatest(ctx, "a", at(1, 0))
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("ratings upsert and order", func(t *testing.T) {
		asOf := at(3, 0)
		require.NoError(t, repos.TeamRating.UpsertBatch(ctx, []models.TeamRating{
			{League: "NBA", Team: "BOS", Rating: 1510, GamesPlayed: 1, AsOf: asOf},
			{League: "NBA", Team: "NYK", Rating: 1490, GamesPlayed: 2, AsOf: asOf},
		}))
		require.NoError(t, repos.TeamRating.UpsertBatch(ctx, []models.TeamRating{
			{League: "NBA", Team: "NYK", Rating: 1530, GamesPlayed: 3, AsOf: asOf},
		}))

		ratings, err := repos.TeamRating.GetByLeague(ctx, "NBA")
		require.NoError(t, err)
		require.Len(t, ratings, 2)
		assert.Equal(t, "NYK", ratings[0].Team)
		assert.Equal(t, 3, ratings[0].GamesPlayed)
	})

	t.Run("backtest runs", func(t *testing.T) {
		run := &models.BacktestRun{
			ID:          uuid.New(),
			League:      "NBA",
			StartDate:   at(1, 0),
			EndDate:     at(5, 0),
			ConfigJSON:  json.RawMessage(`{"league":"NBA"}`),
			MetricsJSON: json.RawMessage(`{"roi":0.05}`),
			CreatedAt:   at(6, 0),
		}
		require.NoError(t, repos.BacktestRun.Create(ctx, run))

		got, err := repos.BacktestRun.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"roi":0.05}`, string(got.MetricsJSON))

		recent, err := repos.BacktestRun.GetRecent(ctx, "NBA", 5)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, run.ID, recent[0].ID)

		_, err = repos.BacktestRun.GetByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})
}

func TestMemoryRepositories(t *testing.T) {
	exerciseRepositories(t, NewMemoryRepositories())
}

func TestPostgresRepositories(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)
	exerciseRepositories(t, repos)
}

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestLatestQuote(t *testing.T) {
	_, quotes := fixtures()
	assert.Nil(t, latestQuote(quotes[:1], at(1, 0)))
	q := latestQuote(quotes[:3], at(3, 0))
	require.NotNil(t, q)
	assert.Equal(t, 200, q.HomeOdds)
}
