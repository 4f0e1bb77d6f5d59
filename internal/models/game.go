package models

import (
	"fmt"
	"sort"
	"time"
)

// Outcome is the result of a game from the home team's perspective.
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

// Game is a single fixture. Scores are nil until the game has been played.
type Game struct {
	ID        string    `db:"game_id" json:"game_id" validate:"required"`
	League    string    `db:"league" json:"league" validate:"required"`
	Date      time.Time `db:"date" json:"date" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required,nefield=HomeTeam"`
	HomeScore *int      `db:"home_score" json:"home_score,omitempty"`
	AwayScore *int      `db:"away_score" json:"away_score,omitempty"`
}

// IsPlayed reports whether both scores are known.
func (g *Game) IsPlayed() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Winner returns the outcome of a played game.
func (g *Game) Winner() (Outcome, bool) {
	if !g.IsPlayed() {
		return "", false
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		return OutcomeHome, true
	case *g.HomeScore < *g.AwayScore:
		return OutcomeAway, true
	default:
		return OutcomeDraw, true
	}
}

// HomeScoreValue is the result value S_home used by rating updates: 1 win, 0.5 draw, 0 loss.
func (o Outcome) HomeScoreValue() float64 {
	switch o {
	case OutcomeHome:
		return 1
	case OutcomeDraw:
		return 0.5
	default:
		return 0
	}
}

// gameBefore orders games by date, then by id.
func gameBefore(a, b *Game) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

// SortGames sorts games in place by (date, id), the only order ratings may be built in.
func SortGames(games []Game) {
	sort.SliceStable(games, func(i, j int) bool {
		return gameBefore(&games[i], &games[j])
	})
}

// CheckOrder returns ErrUnorderedInput when prev must not precede next.
func CheckOrder(prev, next *Game) error {
	if prev == nil {
		return nil
	}
	if gameBefore(next, prev) || (next.Date.Equal(prev.Date) && next.ID == prev.ID) {
		return fmt.Errorf("%w: game %s (%s) after %s (%s)",
			ErrUnorderedInput, next.ID, next.Date.Format(time.RFC3339), prev.ID, prev.Date.Format(time.RFC3339))
	}
	return nil
}
