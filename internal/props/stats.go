// Package props finds value in player prop markets (over/under a stat line)
// from a player's game log history.
package props

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Market is the stat a prop line is set on.
type Market string

const (
	MarketPoints         Market = "points"
	MarketRebounds       Market = "rebounds"
	MarketAssists        Market = "assists"
	MarketThrees         Market = "threes"
	MarketSteals         Market = "steals"
	MarketBlocks         Market = "blocks"
	MarketPtsRebAst      Market = "pts_reb_ast"
	MarketPtsReb         Market = "pts_reb"
	MarketPtsAst         Market = "pts_ast"
	MarketRebAst         Market = "reb_ast"
	MarketPassingYards   Market = "passing_yards"
	MarketPassingTDs     Market = "passing_tds"
	MarketRushingYards   Market = "rushing_yards"
	MarketRushingTDs     Market = "rushing_tds"
	MarketReceivingYards Market = "receiving_yards"
	MarketReceptions     Market = "receptions"
	MarketReceivingTDs   Market = "receiving_tds"
	MarketGoals          Market = "goals"
	MarketNHLAssists     Market = "nhl_assists"
	MarketNHLPoints      Market = "nhl_points"
	MarketShots          Market = "shots"
	MarketSaves          Market = "saves"
)

// StatKey is the game log key the market settles on.
func (m Market) StatKey() string {
	switch m {
	case MarketNHLAssists:
		return "assists"
	case MarketNHLPoints:
		return "points"
	default:
		return string(m)
	}
}

// combos are stat keys summed from their parts when a log does not carry them.
var combos = map[string][]string{
	"pts_reb_ast": {"points", "rebounds", "assists"},
	"pts_reb":     {"points", "rebounds"},
	"pts_ast":     {"points", "assists"},
	"reb_ast":     {"rebounds", "assists"},
}

// GameLog is one game's box score line for a player.
type GameLog struct {
	GameID   string             `json:"game_id"`
	Date     time.Time          `json:"date"`
	Opponent string             `json:"opponent"`
	IsHome   bool               `json:"is_home"`
	Minutes  float64            `json:"minutes"`
	Stats    map[string]float64 `json:"stats"`
}

// Stat returns a stat value, zero when missing. Combined stats fall back to
// the sum of their parts.
func (g GameLog) Stat(key string) float64 {
	if v, ok := g.Stats[key]; ok {
		return v
	}
	total := 0.0
	for _, part := range combos[key] {
		total += g.Stats[part]
	}
	return total
}

// PlayerStats is a player's game history, oldest game first.
type PlayerStats struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Team       string    `json:"team"`
	League     string    `json:"league"`
	Position   string    `json:"position"`
	Logs       []GameLog `json:"game_logs"`
}

// Before returns a copy holding only games played strictly before t, sorted
// by date then game id.
func (p PlayerStats) Before(t time.Time) PlayerStats {
	out := p
	out.Logs = make([]GameLog, 0, len(p.Logs))
	for _, l := range p.Logs {
		if t.IsZero() || l.Date.Before(t) {
			out.Logs = append(out.Logs, l)
		}
	}
	sort.SliceStable(out.Logs, func(i, j int) bool {
		if !out.Logs[i].Date.Equal(out.Logs[j].Date) {
			return out.Logs[i].Date.Before(out.Logs[j].Date)
		}
		return out.Logs[i].GameID < out.Logs[j].GameID
	})
	return out
}

// GamesPlayed is the number of logged games.
func (p PlayerStats) GamesPlayed() int {
	return len(p.Logs)
}

// last returns the most recent n logs, or all of them when n <= 0.
func (p PlayerStats) last(n int) []GameLog {
	if n <= 0 || n >= len(p.Logs) {
		return p.Logs
	}
	return p.Logs[len(p.Logs)-n:]
}

func values(logs []GameLog, key string) []float64 {
	out := make([]float64, len(logs))
	for i, l := range logs {
		out[i] = l.Stat(key)
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Average is the mean of a stat over the last n games (all games when n <= 0).
func (p PlayerStats) Average(key string, n int) float64 {
	return mean(values(p.last(n), key))
}

// Median of a stat over the last n games.
func (p PlayerStats) Median(key string, n int) float64 {
	xs := values(p.last(n), key)
	if len(xs) == 0 {
		return 0
	}
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 0 {
		return (xs[mid-1] + xs[mid]) / 2
	}
	return xs[mid]
}

// HitRate is the share of the last n games where the stat went strictly over line.
func (p PlayerStats) HitRate(key string, line float64, n int) float64 {
	logs := p.last(n)
	if len(logs) == 0 {
		return 0
	}
	hits := 0
	for _, l := range logs {
		if l.Stat(key) > line {
			hits++
		}
	}
	return float64(hits) / float64(len(logs))
}

// StdDev is the population standard deviation of a stat, zero with fewer than two games.
func (p PlayerStats) StdDev(key string, n int) float64 {
	xs := values(p.last(n), key)
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	v := 0.0
	for _, x := range xs {
		v += (x - m) * (x - m)
	}
	return math.Sqrt(v / float64(len(xs)))
}

// VsOpponent returns the stat from every game against opponent.
func (p PlayerStats) VsOpponent(key, opponent string) []float64 {
	var out []float64
	for _, l := range p.Logs {
		if strings.EqualFold(l.Opponent, opponent) {
			out = append(out, l.Stat(key))
		}
	}
	return out
}

// Splits returns the home and away averages; nil when there are no such games.
func (p PlayerStats) Splits(key string) (home, away *float64) {
	var h, a []float64
	for _, l := range p.Logs {
		if l.IsHome {
			h = append(h, l.Stat(key))
		} else {
			a = append(a, l.Stat(key))
		}
	}
	if len(h) > 0 {
		v := mean(h)
		home = &v
	}
	if len(a) > 0 {
		v := mean(a)
		away = &v
	}
	return home, away
}

// Trend is the direction of a player's recent form.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// Trend compares the last three games with the last six and the season.
func (p PlayerStats) Trend(key string) Trend {
	if len(p.Logs) < 6 {
		return TrendNeutral
	}
	last3 := p.Average(key, 3)
	last6 := p.Average(key, 6)
	season := p.Average(key, 0)
	switch {
	case last3 > last6*1.1 && last3 > season:
		return TrendUp
	case last3 < last6*0.9 && last3 < season:
		return TrendDown
	default:
		return TrendNeutral
	}
}
