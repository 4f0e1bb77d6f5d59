package rating

import (
	"fmt"
	"strings"

	"github.com/yourusername/sports-edge/internal/config"
)

const (
	DefaultInitialRating       = 1500.0
	DefaultKFactor             = 20.0
	DefaultHomeAdvantage       = 100.0
	DefaultDrawRate            = 0.25
	DefaultMinDrawRate         = 0.05
	DefaultMinGamesForDrawRate = 50
)

// Params configures a rating engine for one league.
type Params struct {
	League        string  `json:"league"`
	InitialRating float64 `json:"initial_rating"`
	KFactor       float64 `json:"k_factor"`
	HomeAdvantage float64 `json:"home_advantage"`

	// AllowDraws switches prediction to home/draw/away.
	AllowDraws bool `json:"allow_draws"`
	// DefaultDrawRate is used until enough games have been seen, or when the
	// observed rate falls below MinDrawRate.
	DefaultDrawRate     float64 `json:"default_draw_rate"`
	MinDrawRate         float64 `json:"min_draw_rate"`
	MinGamesForDrawRate int     `json:"min_games_for_draw_rate"`
}

// DefaultParams returns per-league defaults. Unknown leagues get the NBA
// values without draws.
func DefaultParams(league string) Params {
	p := Params{
		League:              league,
		InitialRating:       DefaultInitialRating,
		KFactor:             DefaultKFactor,
		HomeAdvantage:       DefaultHomeAdvantage,
		DefaultDrawRate:     DefaultDrawRate,
		MinDrawRate:         DefaultMinDrawRate,
		MinGamesForDrawRate: DefaultMinGamesForDrawRate,
	}

	switch strings.ToUpper(league) {
	case "NHL":
		p.HomeAdvantage = 50
	case "NFL":
		p.KFactor = 30
		p.HomeAdvantage = 80
	case "EPL", "MLS", "SOCCER":
		p.HomeAdvantage = 60
		p.AllowDraws = true
	}
	return p
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	if p.KFactor <= 0 {
		return fmt.Errorf("k_factor must be positive, got %v", p.KFactor)
	}
	if p.InitialRating <= 0 {
		return fmt.Errorf("initial_rating must be positive, got %v", p.InitialRating)
	}
	if p.AllowDraws {
		if p.DefaultDrawRate <= 0 || p.DefaultDrawRate >= 1 {
			return fmt.Errorf("default_draw_rate must be in (0, 1), got %v", p.DefaultDrawRate)
		}
		if p.MinDrawRate < 0 || p.MinDrawRate >= 1 {
			return fmt.Errorf("min_draw_rate must be in [0, 1), got %v", p.MinDrawRate)
		}
		if p.MinGamesForDrawRate < 0 {
			return fmt.Errorf("min_games_for_draw_rate cannot be negative")
		}
	}
	return nil
}

// FromConfig layers a league's configured overrides on its defaults.
func FromConfig(lc config.LeagueConfig) Params {
	p := DefaultParams(strings.ToUpper(lc.Name))
	if lc.InitialRating > 0 {
		p.InitialRating = lc.InitialRating
	}
	if lc.KFactor > 0 {
		p.KFactor = lc.KFactor
	}
	if lc.HomeAdvantage != nil {
		p.HomeAdvantage = *lc.HomeAdvantage
	}
	if lc.AllowDraws != nil {
		p.AllowDraws = *lc.AllowDraws
	}
	if lc.DefaultDrawRate > 0 {
		p.DefaultDrawRate = lc.DefaultDrawRate
	}
	if lc.MinDrawRate > 0 {
		p.MinDrawRate = lc.MinDrawRate
	}
	if lc.MinGamesForDrawRate > 0 {
		p.MinGamesForDrawRate = lc.MinGamesForDrawRate
	}
	return p
}
