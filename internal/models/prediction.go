package models

// Probabilities holds outcome probabilities for one game. Draw is zero for
// leagues without draws.
type Probabilities struct {
	Home float64 `json:"p_home"`
	Away float64 `json:"p_away"`
	Draw float64 `json:"p_draw"`
}

// For returns the probability of the side winning.
func (p Probabilities) For(side Side) float64 {
	switch side {
	case SideHome:
		return p.Home
	case SideAway:
		return p.Away
	case SideDraw:
		return p.Draw
	default:
		return 0
	}
}

// RatingSnapshot is the pre-game state used to predict a game. It never
// reflects the game's own result.
type RatingSnapshot struct {
	GameID          string        `json:"game_id"`
	League          string        `json:"league"`
	HomeTeam        string        `json:"home_team"`
	AwayTeam        string        `json:"away_team"`
	HomeRating      float64       `json:"elo_home_pre"`
	AwayRating      float64       `json:"elo_away_pre"`
	Probabilities   Probabilities `json:"probabilities"`
	HomeGamesPlayed int           `json:"home_games_played"`
	AwayGamesPlayed int           `json:"away_games_played"`
	// HomeUnseen and AwayUnseen mark teams still at the default rating.
	HomeUnseen bool `json:"home_insufficient_data"`
	AwayUnseen bool `json:"away_insufficient_data"`
}

// InsufficientData reports whether either team had no prior games.
func (s RatingSnapshot) InsufficientData() bool {
	return s.HomeUnseen || s.AwayUnseen
}

// RatingDiff is the home minus away pre-game rating.
func (s RatingSnapshot) RatingDiff() float64 {
	return s.HomeRating - s.AwayRating
}
