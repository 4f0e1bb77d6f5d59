package models

import "time"

// Side is a betting side in a moneyline market.
type Side string

const (
	SideNone Side = ""
	SideHome Side = "home"
	SideAway Side = "away"
	SideDraw Side = "draw"
)

// Outcome maps a side to the game outcome that wins it.
func (s Side) Outcome() Outcome {
	switch s {
	case SideHome:
		return OutcomeHome
	case SideAway:
		return OutcomeAway
	case SideDraw:
		return OutcomeDraw
	default:
		return ""
	}
}

// MarketQuote is the canonical moneyline quote for a game. Which book and
// timestamp are chosen is decided upstream.
type MarketQuote struct {
	GameID    string    `db:"game_id" json:"game_id" validate:"required"`
	Book      string    `db:"book" json:"book"`
	Source    string    `db:"source" json:"source"`
	Timestamp time.Time `db:"ts" json:"timestamp"`
	HomeOdds  int       `db:"home_ml" json:"home_odds" validate:"required"`
	AwayOdds  int       `db:"away_ml" json:"away_odds" validate:"required"`
	DrawOdds  *int      `db:"draw_ml" json:"draw_odds,omitempty"`
}

// HasDraw reports whether the market prices a draw.
func (q *MarketQuote) HasDraw() bool {
	return q.DrawOdds != nil
}

// OddsFor returns the American price for a side.
func (q *MarketQuote) OddsFor(side Side) (int, bool) {
	switch side {
	case SideHome:
		return q.HomeOdds, true
	case SideAway:
		return q.AwayOdds, true
	case SideDraw:
		if q.DrawOdds == nil {
			return 0, false
		}
		return *q.DrawOdds, true
	default:
		return 0, false
	}
}

// Sides lists the priced sides in a fixed order.
func (q *MarketQuote) Sides() []Side {
	if q.HasDraw() {
		return []Side{SideHome, SideAway, SideDraw}
	}
	return []Side{SideHome, SideAway}
}
