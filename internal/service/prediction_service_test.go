package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/rating"
	"github.com/yourusername/sports-edge/internal/repository"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func march(day, hour int) time.Time {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *config.Config {
	return &config.Config{
		Leagues: []config.LeagueConfig{{Name: "NBA"}},
		Service: config.ServiceConfig{
			Bankroll:            1000,
			CacheTTLSeconds:     300,
			CacheCleanupSeconds: 600,
		},
	}
}

// seedLeague stores five BOS wins over NYK and an upcoming slate:
//   - u1 BOS v NYK with an even-money quote
//   - u2 GSW v LAL, both teams unseen, with a +150 both ways quote
//   - u3 NYK v BOS with no quote before now
//   - u4 LAL v NYK with an out-of-range price
func seedLeague(t *testing.T, repos *repository.Repositories) {
	t.Helper()
	ctx := context.Background()

	var games []models.Game
	for d := 1; d <= 5; d++ {
		games = append(games, models.Game{
			ID: "h" + string(rune('0'+d)), League: "NBA", Date: march(d, 19),
			HomeTeam: "BOS", AwayTeam: "NYK", HomeScore: intPtr(110), AwayScore: intPtr(100),
		})
	}
	games = append(games,
		models.Game{ID: "u1", League: "NBA", Date: march(10, 19), HomeTeam: "BOS", AwayTeam: "NYK"},
		models.Game{ID: "u2", League: "NBA", Date: march(10, 20), HomeTeam: "GSW", AwayTeam: "LAL"},
		models.Game{ID: "u3", League: "NBA", Date: march(11, 19), HomeTeam: "NYK", AwayTeam: "BOS"},
		models.Game{ID: "u4", League: "NBA", Date: march(11, 20), HomeTeam: "LAL", AwayTeam: "NYK"},
	)
	require.NoError(t, repos.Game.UpsertBatch(ctx, games))

	require.NoError(t, repos.Quote.InsertBatch(ctx, []models.MarketQuote{
		{GameID: "u1", Book: "pinnacle", Timestamp: march(10, 10), HomeOdds: 100, AwayOdds: 100},
		{GameID: "u2", Book: "pinnacle", Timestamp: march(10, 10), HomeOdds: 150, AwayOdds: 150},
		// recorded after now, not yet visible
		{GameID: "u3", Book: "pinnacle", Timestamp: march(10, 18), HomeOdds: 120, AwayOdds: -140},
		{GameID: "u4", Book: "pinnacle", Timestamp: march(10, 9), HomeOdds: 50, AwayOdds: -110},
	}))
}

func newTestService(t *testing.T, cfg *config.Config) (*PredictionService, *repository.Repositories) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	seedLeague(t, repos)

	svc, err := NewPredictionService(cfg, repos, quietLogger())
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }
	return svc, repos
}

func byID(slate *Slate) map[string]GamePrediction {
	out := make(map[string]GamePrediction, len(slate.Games))
	for _, g := range slate.Games {
		out[g.Game.ID] = g
	}
	return out
}

func TestNewPredictionServiceValidation(t *testing.T) {
	_, err := NewPredictionService(nil, repository.NewMemoryRepositories(), nil)
	assert.Error(t, err)

	_, err = NewPredictionService(testConfig(), nil, nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Staking.MaxTotalRisk = 2
	_, err = NewPredictionService(cfg, repository.NewMemoryRepositories(), nil)
	assert.Error(t, err)
}

func TestRefreshRatingsStoresTable(t *testing.T) {
	svc, repos := newTestService(t, testConfig())
	ctx := context.Background()

	engine, err := svc.RefreshRatings(ctx, "nba")
	require.NoError(t, err)
	assert.Equal(t, 5, engine.GamesApplied())
	assert.Greater(t, engine.Rating("BOS"), engine.Rating("NYK"))

	stored, err := repos.TeamRating.GetByLeague(ctx, "NBA")
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "BOS", stored[0].Team)
	assert.Equal(t, 5, stored[0].GamesPlayed)
	assert.Equal(t, testNow, stored[0].AsOf)
	// zero-sum updates
	assert.InDelta(t, 3000, stored[0].Rating+stored[1].Rating, 1e-9)
}

func TestEngineIsCached(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	ctx := context.Background()

	first, err := svc.Engine(ctx, "NBA")
	require.NoError(t, err)
	second, err := svc.Engine(ctx, "NBA")
	require.NoError(t, err)
	assert.Same(t, first, second)

	hits, misses := svc.engines.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	refreshed, err := svc.RefreshRatings(ctx, "NBA")
	require.NoError(t, err)
	assert.NotSame(t, first, refreshed)
}

func TestUnknownLeague(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	_, err := svc.Ratings(context.Background(), "NHL")
	assert.True(t, errors.Is(err, ErrLeagueNotConfigured))

	_, err = svc.EvaluateSlate(context.Background(), SlateRequest{League: "NHL", From: testNow, To: testNow})
	assert.True(t, errors.Is(err, ErrLeagueNotConfigured))
}

func TestEvaluateSlate(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	slate, err := svc.EvaluateSlate(context.Background(), SlateRequest{
		League: "NBA",
		From:   march(10, 0),
		To:     march(12, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, "NBA", slate.League)
	assert.True(t, slate.Bankroll.Equal(decimal.NewFromInt(1000)))
	require.Len(t, slate.Games, 4)

	games := byID(slate)
	assert.Empty(t, games["u1"].SkipReason)
	require.NotNil(t, games["u1"].Evaluation)
	assert.Equal(t, models.SideHome, games["u1"].Evaluation.RecommendedSide)
	assert.False(t, games["u1"].Snapshot.InsufficientData())

	assert.True(t, games["u2"].Snapshot.InsufficientData())
	require.NotNil(t, games["u2"].Evaluation)
	assert.Equal(t, models.SideHome, games["u2"].Evaluation.RecommendedSide)

	assert.Equal(t, SkipReasonMissingQuote, games["u3"].SkipReason)
	assert.Equal(t, SkipReasonInvalidQuote, games["u4"].SkipReason)

	require.Len(t, slate.Allocations, 2)
	total := 0.0
	for _, a := range slate.Allocations {
		assert.True(t, a.Amount.IsPositive())
		total += a.Fraction
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	require.NotNil(t, slate.Parlay)
	assert.Len(t, slate.Parlay.Legs, 2)
}

func TestEvaluateSlateSkipsUnseenTeams(t *testing.T) {
	cfg := testConfig()
	cfg.Edge.SkipInsufficientData = true
	svc, _ := newTestService(t, cfg)

	slate, err := svc.EvaluateSlate(context.Background(), SlateRequest{
		League:   "NBA",
		From:     march(10, 0),
		To:       march(11, 0),
		Bankroll: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	games := byID(slate)
	assert.Equal(t, SkipReasonNoHistory, games["u2"].SkipReason)
	require.Len(t, slate.Allocations, 1)
	assert.Equal(t, "u1", slate.Allocations[0].GameID)
	assert.True(t, slate.Bankroll.Equal(decimal.NewFromInt(500)))
	assert.Nil(t, slate.Parlay)
}

func TestEvaluateSlateInjuriesOnlyAffectPrediction(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	ctx := context.Background()
	req := SlateRequest{League: "NBA", From: march(10, 0), To: march(11, 0)}

	healthy, err := svc.EvaluateSlate(ctx, req)
	require.NoError(t, err)

	req.Injuries = []rating.Injury{
		{Team: "BOS", Player: "A", Status: "Out"},
		{Team: "BOS", Player: "B", Status: "Doubtful"},
	}
	injured, err := svc.EvaluateSlate(ctx, req)
	require.NoError(t, err)

	before := byID(healthy)["u1"].Snapshot
	after := byID(injured)["u1"].Snapshot
	assert.Less(t, after.Probabilities.Home, before.Probabilities.Home)
	assert.Equal(t, before.HomeRating, after.HomeRating)

	engine, err := svc.Engine(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, before.HomeRating, engine.Rating("BOS"))
}

func TestEvaluateSlateRejectsInvertedWindow(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	_, err := svc.EvaluateSlate(context.Background(), SlateRequest{League: "NBA", From: march(12, 0), To: march(10, 0)})
	assert.Error(t, err)
}

func TestEvaluateSlatePlayedGame(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	slate, err := svc.EvaluateSlate(context.Background(), SlateRequest{League: "NBA", From: march(5, 0), To: march(6, 0)})
	require.NoError(t, err)
	require.Len(t, slate.Games, 1)
	assert.Equal(t, SkipReasonPlayed, slate.Games[0].SkipReason)
	assert.Empty(t, slate.Allocations)
}
