package rating

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/models"
)

func score(v int) *int { return &v }

func newTestEngine(t *testing.T, params Params) *Engine {
	t.Helper()
	e, err := NewEngine(params)
	require.NoError(t, err)
	return e
}

// seasonFixture builds a deterministic round robin with a mix of results.
func seasonFixture(n int) []models.Game {
	teams := []string{"BOS", "NYK", "MIA", "LAL", "GSW", "DEN"}
	start := time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC)
	games := make([]models.Game, 0, n)
	for i := 0; i < n; i++ {
		home := teams[i%len(teams)]
		away := teams[(i*5+1)%len(teams)]
		if home == away {
			away = teams[(i+2)%len(teams)]
		}
		hs, as := 100+(i*7)%13, 100+(i*11)%13
		games = append(games, models.Game{
			ID:        fmt.Sprintf("g%04d", i),
			League:    "NBA",
			Date:      start.AddDate(0, 0, i/3),
			HomeTeam:  home,
			AwayTeam:  away,
			HomeScore: score(hs),
			AwayScore: score(as),
		})
	}
	return games
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.909, ExpectedScore(1900, 1500), 0.001)
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-12)
	assert.InDelta(t, 1.0, ExpectedScore(1600, 1450)+ExpectedScore(1450, 1600), 1e-12)
}

func TestPredictNewTeamsWithHomeAdvantage(t *testing.T) {
	e := newTestEngine(t, DefaultParams("NBA"))

	p := e.Predict("BOS", "NYK")
	assert.InDelta(t, 0.640, p.Home, 0.001)
	assert.InDelta(t, 1.0, p.Home+p.Away, 1e-12)
	assert.Zero(t, p.Draw)
}

func TestPredictDoesNotMutate(t *testing.T) {
	e := newTestEngine(t, DefaultParams("NBA"))
	e.ApplyResult("BOS", "NYK", models.OutcomeHome, 20)
	before := e.Ratings(time.Time{})

	first := e.Predict("BOS", "NYK")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Predict("BOS", "NYK"))
		e.Predict("UNKNOWN", "ALSO_UNKNOWN")
	}

	assert.Equal(t, before, e.Ratings(time.Time{}))
	assert.Equal(t, 0, e.GamesPlayed("UNKNOWN"))
}

func TestApplyResultIsZeroSum(t *testing.T) {
	e := newTestEngine(t, DefaultParams("NBA"))

	e.ApplyResult("BOS", "NYK", models.OutcomeHome, 20)
	// E_home = 0.640 with 100 home advantage.
	assert.InDelta(t, 1507.2, e.Rating("BOS"), 0.01)
	assert.InDelta(t, 1492.8, e.Rating("NYK"), 0.01)

	for _, g := range seasonFixture(60) {
		outcome, _ := g.Winner()
		e.ApplyResult(g.HomeTeam, g.AwayTeam, outcome, 20)
	}
	total := 0.0
	ratings := e.Ratings(time.Time{})
	for _, r := range ratings {
		total += r.Rating
	}
	assert.InDelta(t, float64(len(ratings))*DefaultInitialRating, total, 1e-6)
}

func TestBuildFeaturesSnapshotsBeforeUpdate(t *testing.T) {
	games := seasonFixture(40)

	e := newTestEngine(t, DefaultParams("NBA"))
	snaps, err := e.BuildFeatures(games)
	require.NoError(t, err)
	require.Len(t, snaps, len(games))

	first := snaps[0]
	assert.Equal(t, DefaultInitialRating, first.HomeRating)
	assert.Equal(t, DefaultInitialRating, first.AwayRating)
	assert.True(t, first.InsufficientData())

	for _, i := range []int{1, 7, 19, 39} {
		prefix := newTestEngine(t, DefaultParams("NBA"))
		_, err := prefix.BuildFeatures(games[:i])
		require.NoError(t, err)

		want := prefix.Snapshot(&games[i])
		assert.Equal(t, want, snaps[i], "snapshot %d must depend only on earlier games", i)
	}
}

func TestBuildFeaturesIsDeterministic(t *testing.T) {
	games := seasonFixture(30)

	a := newTestEngine(t, DefaultParams("NBA"))
	b := newTestEngine(t, DefaultParams("NBA"))
	snapsA, err := a.BuildFeatures(games)
	require.NoError(t, err)
	snapsB, err := b.BuildFeatures(games)
	require.NoError(t, err)

	assert.Equal(t, snapsA, snapsB)
}

func TestBuildFeaturesRejectsUnorderedInput(t *testing.T) {
	games := seasonFixture(10)
	games[3], games[7] = games[7], games[3]

	e := newTestEngine(t, DefaultParams("NBA"))
	_, err := e.BuildFeatures(games)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnorderedInput))

	models.SortGames(games)
	e = newTestEngine(t, DefaultParams("NBA"))
	_, err = e.BuildFeatures(games)
	assert.NoError(t, err)
}

func TestUnplayedGameDoesNotUpdate(t *testing.T) {
	e := newTestEngine(t, DefaultParams("NBA"))
	games := seasonFixture(5)
	games[4].HomeScore, games[4].AwayScore = nil, nil

	snaps, err := e.BuildFeatures(games)
	require.NoError(t, err)
	assert.Len(t, snaps, 5)
	assert.Equal(t, 4, e.GamesApplied())
}

func TestDrawProbabilitiesNormalized(t *testing.T) {
	params := DefaultParams("EPL")
	require.True(t, params.AllowDraws)
	e := newTestEngine(t, params)

	p := e.Predict("ARS", "CHE")
	assert.InDelta(t, DefaultDrawRate, p.Draw, 1e-12)
	assert.InDelta(t, 1.0, p.Home+p.Away+p.Draw, 1e-12)

	e.ApplyResult("ARS", "CHE", models.OutcomeDraw, params.KFactor)
	p = e.Predict("CHE", "ARS")
	assert.InDelta(t, 1.0, p.Home+p.Away+p.Draw, 1e-12)
}

func TestDrawRateUsesObservedShare(t *testing.T) {
	params := DefaultParams("EPL")
	params.MinGamesForDrawRate = 4
	e := newTestEngine(t, params)

	e.ApplyResult("A", "B", models.OutcomeDraw, 20)
	e.ApplyResult("C", "D", models.OutcomeHome, 20)
	e.ApplyResult("A", "C", models.OutcomeAway, 20)
	assert.Equal(t, DefaultDrawRate, e.DrawRate(), "too few games for an observed rate")

	e.ApplyResult("B", "D", models.OutcomeHome, 20)
	assert.InDelta(t, 0.25, e.DrawRate(), 1e-12)

	for i := 0; i < 16; i++ {
		e.ApplyResult("A", "B", models.OutcomeHome, 20)
	}
	// 1 draw in 20 games is exactly the 0.05 floor.
	assert.InDelta(t, 0.05, e.DrawRate(), 1e-12)
	e.ApplyResult("A", "B", models.OutcomeHome, 20)
	assert.Equal(t, DefaultDrawRate, e.DrawRate())
}

func TestPredictAdjustedIsPure(t *testing.T) {
	e := newTestEngine(t, DefaultParams("NBA"))
	base := e.Predict("BOS", "NYK")

	adjusted := e.PredictAdjusted("BOS", "NYK", Adjustments{"BOS": -25})
	assert.Less(t, adjusted.Home, base.Home)
	assert.Equal(t, base, e.Predict("BOS", "NYK"))
	assert.Equal(t, DefaultInitialRating, e.Rating("BOS"))
}

func TestInjuryImpact(t *testing.T) {
	tests := map[string]float64{
		"Out":          -25,
		"Suspended":    -25,
		"Doubtful":     -15,
		"Questionable": -10,
		"Day-To-Day":   -8,
		"day to day":   -8,
		"Probable":     -5,
		"unknown":      -5,
	}
	for status, want := range tests {
		assert.Equal(t, want, InjuryImpact(status), status)
	}

	adj := AdjustmentsFromInjuries([]Injury{
		{Team: "BOS", Status: "Out"},
		{Team: "BOS", Status: "Questionable"},
		{Team: "NYK", Status: "Probable"},
	})
	assert.Equal(t, -35.0, adj["BOS"])
	assert.Equal(t, -5.0, adj["NYK"])
}

func TestDefaultParams(t *testing.T) {
	nfl := DefaultParams("NFL")
	assert.Equal(t, 30.0, nfl.KFactor)
	assert.Equal(t, 80.0, nfl.HomeAdvantage)

	nhl := DefaultParams("nhl")
	assert.Equal(t, 50.0, nhl.HomeAdvantage)

	_, err := NewEngine(Params{KFactor: 0, InitialRating: 1500})
	assert.Error(t, err)
}

func TestFromConfigOverrides(t *testing.T) {
	ha := 0.0
	draws := true
	p := FromConfig(config.LeagueConfig{Name: "nba", KFactor: 12, HomeAdvantage: &ha, AllowDraws: &draws})
	assert.Equal(t, "NBA", p.League)
	assert.Equal(t, 12.0, p.KFactor)
	assert.Equal(t, 0.0, p.HomeAdvantage)
	assert.True(t, p.AllowDraws)
	assert.Equal(t, DefaultInitialRating, p.InitialRating)

	nhl := FromConfig(config.LeagueConfig{Name: "NHL"})
	assert.Equal(t, DefaultParams("NHL"), nhl)
}
