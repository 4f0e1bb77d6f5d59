package models

import "time"

// TeamRating is a persisted rating for a team at a point in time.
type TeamRating struct {
	League      string    `db:"league" json:"league"`
	Team        string    `db:"team" json:"team"`
	Rating      float64   `db:"rating" json:"rating"`
	GamesPlayed int       `db:"games_played" json:"games_played"`
	AsOf        time.Time `db:"as_of" json:"as_of"`
}
