// Package rating implements a point-in-time Elo rating engine.
//
// Every game is predicted from the state strictly before it and only then
// folded into the ratings, so a snapshot never sees its own result.
package rating

import (
	"math"
	"sort"
	"time"

	"github.com/yourusername/sports-edge/internal/models"
)

// ExpectedScore is the Elo expected score of a against b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// Engine holds the ratings for one league. It is not safe for concurrent
// mutation; Predict and the other read methods may be called concurrently
// once no more results are applied.
type Engine struct {
	params Params

	// team name -> slot
	index   map[string]int
	ratings []float64
	played  []int

	gamesApplied int
	draws        int
	last         *models.Game
}

// NewEngine creates an engine with every team at the initial rating.
func NewEngine(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params: params,
		index:  make(map[string]int),
	}, nil
}

// Params returns the engine parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Rating returns the current rating of a team, or the initial rating for a
// team that has not played. Unknown teams are not inserted.
func (e *Engine) Rating(team string) float64 {
	if i, ok := e.index[team]; ok {
		return e.ratings[i]
	}
	return e.params.InitialRating
}

// GamesPlayed returns how many results have been applied for a team.
func (e *Engine) GamesPlayed(team string) int {
	if i, ok := e.index[team]; ok {
		return e.played[i]
	}
	return 0
}

// GamesApplied returns the number of results folded into the ratings.
func (e *Engine) GamesApplied() int {
	return e.gamesApplied
}

func (e *Engine) slot(team string) int {
	if i, ok := e.index[team]; ok {
		return i
	}
	i := len(e.ratings)
	e.index[team] = i
	e.ratings = append(e.ratings, e.params.InitialRating)
	e.played = append(e.played, 0)
	return i
}

// DrawRate is the draw probability used for the next prediction. It is the
// observed share of draws once enough games have been applied, otherwise the
// configured default.
func (e *Engine) DrawRate() float64 {
	if !e.params.AllowDraws {
		return 0
	}
	if e.gamesApplied < e.params.MinGamesForDrawRate || e.gamesApplied == 0 {
		return e.params.DefaultDrawRate
	}
	rate := float64(e.draws) / float64(e.gamesApplied)
	if rate < e.params.MinDrawRate {
		return e.params.DefaultDrawRate
	}
	return rate
}

// probabilities turns two ratings into outcome probabilities. With draws
// enabled the two-way expectation is scaled by (1 - pDraw), so the three
// values always sum to one.
func (e *Engine) probabilities(home, away float64) models.Probabilities {
	pHome := ExpectedScore(home+e.params.HomeAdvantage, away)
	if !e.params.AllowDraws {
		return models.Probabilities{Home: pHome, Away: 1 - pHome}
	}
	pDraw := e.DrawRate()
	return models.Probabilities{
		Home: pHome * (1 - pDraw),
		Away: (1 - pHome) * (1 - pDraw),
		Draw: pDraw,
	}
}

// Predict returns outcome probabilities from the current ratings without
// changing any state.
func (e *Engine) Predict(home, away string) models.Probabilities {
	return e.probabilities(e.Rating(home), e.Rating(away))
}

// PredictAdjusted is Predict with temporary rating deltas applied to the
// two teams. The adjustments are never written back.
func (e *Engine) PredictAdjusted(home, away string, adj Adjustments) models.Probabilities {
	return e.probabilities(e.Rating(home)+adj[home], e.Rating(away)+adj[away])
}

// ApplyResult performs a zero-sum Elo update with the given K. The home
// team's expectation includes home advantage.
func (e *Engine) ApplyResult(home, away string, outcome models.Outcome, k float64) {
	h, a := e.slot(home), e.slot(away)

	expected := ExpectedScore(e.ratings[h]+e.params.HomeAdvantage, e.ratings[a])
	delta := k * (outcome.HomeScoreValue() - expected)

	e.ratings[h] += delta
	e.ratings[a] -= delta
	e.played[h]++
	e.played[a]++

	e.gamesApplied++
	if outcome == models.OutcomeDraw {
		e.draws++
	}
}

// Snapshot captures the pre-game state for a game without changing anything.
func (e *Engine) Snapshot(g *models.Game) models.RatingSnapshot {
	home, away := e.Rating(g.HomeTeam), e.Rating(g.AwayTeam)
	homePlayed, awayPlayed := e.GamesPlayed(g.HomeTeam), e.GamesPlayed(g.AwayTeam)
	return models.RatingSnapshot{
		GameID:          g.ID,
		League:          g.League,
		HomeTeam:        g.HomeTeam,
		AwayTeam:        g.AwayTeam,
		HomeRating:      home,
		AwayRating:      away,
		Probabilities:   e.probabilities(home, away),
		HomeGamesPlayed: homePlayed,
		AwayGamesPlayed: awayPlayed,
		HomeUnseen:      homePlayed == 0,
		AwayUnseen:      awayPlayed == 0,
	}
}

// Process snapshots a game and then, if it has been played, applies its
// result. Games must arrive ordered by (date, id); anything else returns
// models.ErrUnorderedInput and leaves the engine untouched.
func (e *Engine) Process(g models.Game) (models.RatingSnapshot, error) {
	if err := models.CheckOrder(e.last, &g); err != nil {
		return models.RatingSnapshot{}, err
	}
	e.last = &g

	snap := e.Snapshot(&g)
	if outcome, ok := g.Winner(); ok {
		e.ApplyResult(g.HomeTeam, g.AwayTeam, outcome, e.params.KFactor)
	}
	return snap, nil
}

// BuildFeatures processes games in order and returns one pre-game snapshot
// per game. Unplayed games get a snapshot but do not move the ratings.
func (e *Engine) BuildFeatures(games []models.Game) ([]models.RatingSnapshot, error) {
	snaps := make([]models.RatingSnapshot, 0, len(games))
	for _, g := range games {
		snap, err := e.Process(g)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Ratings returns every rated team, highest rating first.
func (e *Engine) Ratings(asOf time.Time) []models.TeamRating {
	out := make([]models.TeamRating, 0, len(e.index))
	for team, i := range e.index {
		out = append(out, models.TeamRating{
			League:      e.params.League,
			Team:        team,
			Rating:      e.ratings[i],
			GamesPlayed: e.played[i],
			AsOf:        asOf,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Team < out[j].Team
	})
	return out
}
