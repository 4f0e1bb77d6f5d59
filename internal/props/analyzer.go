package props

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/edge"
	"github.com/yourusername/sports-edge/internal/metrics"
	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/odds"
	"github.com/yourusername/sports-edge/internal/staking"
)

const (
	DefaultMinGames        = 5
	DefaultMinEdge         = 1.0
	DefaultShrinkWeight    = 0.7
	DefaultKellyMultiplier = 0.25
	DefaultMaxStake        = 0.02
	DefaultTopN            = 20

	minModelProb = 0.05
	maxModelProb = 0.95
)

// Side is the over or under of a prop line.
type Side string

const (
	SideNone  Side = ""
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Line is a bookmaker's over/under offer on a player stat.
type Line struct {
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name" validate:"required"`
	Team       string    `json:"team"`
	Opponent   string    `json:"opponent"`
	GameDate   time.Time `json:"game_date" validate:"required"`
	Market     Market    `json:"market" validate:"required"`
	Line       float64   `json:"line" validate:"gte=0"`
	OverOdds   int       `json:"over_odds" validate:"required"`
	UnderOdds  int       `json:"under_odds" validate:"required"`
	Book       string    `json:"book"`
	EventID    string    `json:"event_id"`
}

// Name is a human readable label for the line.
func (l Line) Name() string {
	return fmt.Sprintf("%s %s O/U %g", l.PlayerName, l.Market, l.Line)
}

// Edge is the analysis of one prop line. Probabilities are for the over.
type Edge struct {
	Line           Line     `json:"line"`
	PlayerID       string   `json:"player_id"`
	League         string   `json:"league"`
	Projection     float64  `json:"projected_value"`
	SeasonAvg      float64  `json:"season_avg"`
	SeasonMedian   float64  `json:"season_median"`
	Last10Avg      float64  `json:"last10_avg"`
	Last5Avg       float64  `json:"last5_avg"`
	HitRateSeason  float64  `json:"hit_rate_season"`
	HitRateLast10  float64  `json:"hit_rate_last10"`
	HitRateLast5   float64  `json:"hit_rate_last5"`
	VsOpponentAvg  *float64 `json:"vs_opponent_avg,omitempty"`
	HomeAvg        *float64 `json:"home_avg,omitempty"`
	AwayAvg        *float64 `json:"away_avg,omitempty"`
	Trend          Trend    `json:"trend"`
	SampleSize     int      `json:"sample_size"`
	ModelProbOver  float64  `json:"model_prob_over"`
	MarketProbOver float64  `json:"market_prob_over"`
	// EdgePP is model minus de-vigged market for the over, in percentage points.
	EdgePP          float64               `json:"edge_pct"`
	DecimalOver     float64               `json:"decimal_over"`
	DecimalUnder    float64               `json:"decimal_under"`
	EVOver          float64               `json:"ev_over"`
	EVUnder         float64               `json:"ev_under"`
	StakeFracOver   float64               `json:"stake_frac_over"`
	StakeFracUnder  float64               `json:"stake_frac_under"`
	StakeOver       decimal.Decimal       `json:"stake_dollars_over"`
	StakeUnder      decimal.Decimal       `json:"stake_dollars_under"`
	RecommendedSide Side                  `json:"recommended_side"`
	Tier            models.ConfidenceTier `json:"confidence_tier"`
}

// Pick returns the EV and stake fraction of the recommended side.
func (e Edge) Pick() (ev, stakeFrac float64, ok bool) {
	switch e.RecommendedSide {
	case SideOver:
		return e.EVOver, e.StakeFracOver, true
	case SideUnder:
		return e.EVUnder, e.StakeFracUnder, true
	default:
		return 0, 0, false
	}
}

// score ranks recommended props by EV times stake fraction.
func (e Edge) score() float64 {
	ev, frac, _ := e.Pick()
	return ev * frac
}

// Config controls prop analysis.
type Config struct {
	MinGames int `json:"min_games"`
	// MinEdge is the minimum edge in percentage points.
	MinEdge float64 `json:"min_edge"`
	MinEV   float64 `json:"min_ev"`
	// ShrinkWeight blends the model toward the market; 1 disables shrinking.
	ShrinkWeight    float64 `json:"shrink_weight"`
	KellyMultiplier float64 `json:"kelly_multiplier"`
	// MaxStake caps the stake fraction after the multiplier.
	MaxStake float64 `json:"max_stake"`
	TopN     int     `json:"top_n"`
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		MinGames:        DefaultMinGames,
		MinEdge:         DefaultMinEdge,
		ShrinkWeight:    DefaultShrinkWeight,
		KellyMultiplier: DefaultKellyMultiplier,
		MaxStake:        DefaultMaxStake,
		TopN:            DefaultTopN,
	}
}

// FromConfig maps application config onto an analyzer config. Zero values
// keep the defaults, except MinEV which is a plain floor.
func FromConfig(pc config.PropsConfig) Config {
	c := DefaultConfig()
	if pc.MinGames > 0 {
		c.MinGames = pc.MinGames
	}
	if pc.MinEdge > 0 {
		c.MinEdge = pc.MinEdge
	}
	c.MinEV = pc.MinEV
	if pc.ShrinkWeight > 0 {
		c.ShrinkWeight = pc.ShrinkWeight
	}
	if pc.KellyMultiplier > 0 {
		c.KellyMultiplier = pc.KellyMultiplier
	}
	if pc.MaxStake > 0 {
		c.MaxStake = pc.MaxStake
	}
	if pc.TopN > 0 {
		c.TopN = pc.TopN
	}
	return c
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if c.MinGames < 1 {
		return fmt.Errorf("min_games must be at least 1, got %d", c.MinGames)
	}
	if c.MinEdge < 0 {
		return fmt.Errorf("min_edge must not be negative, got %v", c.MinEdge)
	}
	if c.ShrinkWeight < 0 || c.ShrinkWeight > 1 {
		return fmt.Errorf("shrink_weight must be in [0, 1], got %v", c.ShrinkWeight)
	}
	if c.KellyMultiplier <= 0 || c.KellyMultiplier > 1 {
		return fmt.Errorf("kelly_multiplier must be in (0, 1], got %v", c.KellyMultiplier)
	}
	if c.MaxStake <= 0 || c.MaxStake > 1 {
		return fmt.Errorf("max_stake must be in (0, 1], got %v", c.MaxStake)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	return nil
}

// Analyzer prices prop lines against a player's history.
type Analyzer struct {
	cfg      Config
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config, logger *logrus.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Analyzer{cfg: cfg, validate: validator.New(), logger: logger}, nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze prices one line. Only games played before the line's game date
// feed the model.
func (a *Analyzer) Analyze(line Line, player PlayerStats, bankroll decimal.Decimal) (*Edge, error) {
	if err := a.validate.Struct(line); err != nil {
		return nil, fmt.Errorf("invalid prop line %s: %w", line.Name(), err)
	}
	impliedOver, err := odds.AmericanToImpliedProb(line.OverOdds)
	if err != nil {
		return nil, fmt.Errorf("over price: %w", err)
	}
	impliedUnder, err := odds.AmericanToImpliedProb(line.UnderOdds)
	if err != nil {
		return nil, fmt.Errorf("under price: %w", err)
	}
	fair, err := odds.DeVig(impliedOver, impliedUnder)
	if err != nil {
		return nil, err
	}
	decOver, _ := odds.AmericanToDecimal(line.OverOdds)
	decUnder, _ := odds.AmericanToDecimal(line.UnderOdds)

	history := player.Before(line.GameDate)
	key := line.Market.StatKey()

	e := &Edge{
		Line:          line,
		PlayerID:      player.PlayerID,
		League:        player.League,
		SeasonAvg:     history.Average(key, 0),
		Last10Avg:     history.Average(key, 10),
		Last5Avg:      history.Average(key, 5),
		HitRateSeason: history.HitRate(key, line.Line, 0),
		HitRateLast10: history.HitRate(key, line.Line, 10),
		HitRateLast5:  history.HitRate(key, line.Line, 5),
		Trend:         history.Trend(key),
		SampleSize:    history.GamesPlayed(),
		DecimalOver:   decOver,
		DecimalUnder:  decUnder,
	}
	if vs := history.VsOpponent(key, line.Opponent); len(vs) > 0 && line.Opponent != "" {
		v := mean(vs)
		e.VsOpponentAvg = &v
	}
	e.HomeAvg, e.AwayAvg = history.Splits(key)
	e.Projection = projection(e)

	e.SeasonMedian = history.Median(key, 0)
	model := modelProbOver(line.Line, history.StdDev(key, 0), e)
	w := a.cfg.ShrinkWeight
	e.ModelProbOver = w*model + (1-w)*fair[0]
	e.MarketProbOver = fair[0]
	e.EdgePP = (e.ModelProbOver - e.MarketProbOver) * 100

	e.EVOver = odds.ExpectedValue(e.ModelProbOver, decOver)
	e.EVUnder = odds.ExpectedValue(1-e.ModelProbOver, decUnder)
	e.StakeFracOver = a.stakeFraction(e.ModelProbOver, decOver)
	e.StakeFracUnder = a.stakeFraction(1-e.ModelProbOver, decUnder)
	e.StakeOver = staking.StakeAmount(bankroll, e.StakeFracOver)
	e.StakeUnder = staking.StakeAmount(bankroll, e.StakeFracUnder)

	e.Tier = models.TierLow
	if e.SampleSize >= a.cfg.MinGames {
		switch {
		case e.EVOver > 0 && e.EVOver >= a.cfg.MinEV && e.EdgePP >= a.cfg.MinEdge:
			e.RecommendedSide = SideOver
			e.Tier = edge.Tier(e.EVOver, e.EdgePP)
		case e.EVUnder > 0 && e.EVUnder >= a.cfg.MinEV && -e.EdgePP >= a.cfg.MinEdge:
			e.RecommendedSide = SideUnder
			e.Tier = edge.Tier(e.EVUnder, -e.EdgePP)
		}
	}

	metrics.RecordPropEvaluated(player.League, e.RecommendedSide != SideNone)
	a.logger.WithFields(logrus.Fields{
		"prop":        line.Name(),
		"sample_size": e.SampleSize,
		"model_over":  e.ModelProbOver,
		"market_over": e.MarketProbOver,
		"edge_pp":     e.EdgePP,
		"side":        e.RecommendedSide,
	}).Debug("Prop analyzed")
	return e, nil
}

// stakeFraction is full Kelly times the multiplier, capped at MaxStake.
func (a *Analyzer) stakeFraction(p, decimalOdds float64) float64 {
	f := odds.RawKelly(p, decimalOdds)
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	return math.Min(f*a.cfg.KellyMultiplier, a.cfg.MaxStake)
}

// AnalyzeAll prices every line whose player can be found by id, then by
// case-insensitive name. Lines without a player or with bad prices are skipped.
func (a *Analyzer) AnalyzeAll(lines []Line, players []PlayerStats, bankroll decimal.Decimal) []Edge {
	byID := make(map[string]PlayerStats, len(players))
	byName := make(map[string]PlayerStats, len(players))
	for _, p := range players {
		if p.PlayerID != "" {
			byID[p.PlayerID] = p
		}
		byName[strings.ToLower(p.PlayerName)] = p
	}

	edges := make([]Edge, 0, len(lines))
	for _, line := range lines {
		player, ok := byID[line.PlayerID]
		if !ok || line.PlayerID == "" {
			player, ok = byName[strings.ToLower(line.PlayerName)]
		}
		if !ok {
			a.logger.WithField("prop", line.Name()).Debug("No stats for prop player")
			continue
		}
		e, err := a.Analyze(line, player, bankroll)
		if err != nil {
			a.logger.WithError(err).WithField("prop", line.Name()).Warn("Skipping prop")
			continue
		}
		edges = append(edges, *e)
	}
	return edges
}

// Best keeps recommended props with enough history and ranks them by EV
// times stake fraction, returning at most TopN.
func (a *Analyzer) Best(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if e.RecommendedSide != SideNone && e.SampleSize >= a.cfg.MinGames {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].score(), out[j].score()
		if si != sj {
			return si > sj
		}
		return out[i].Line.Name() < out[j].Line.Name()
	})
	if len(out) > a.cfg.TopN {
		out = out[:a.cfg.TopN]
	}
	return out
}

// modelProbOver blends four signals for the over:
// hit rate 35%, a logistic approximation of the normal 30%, recent form 25%
// and the opponent context 10%. The result is clamped to [0.05, 0.95].
func modelProbOver(line, std float64, e *Edge) float64 {
	empirical := 0.6*e.HitRateLast10 + 0.4*e.HitRateSeason

	var gaussian float64
	if std > 0 {
		z := (line - e.SeasonAvg) / std
		gaussian = 1 / (1 + math.Exp(1.7*z))
	} else {
		gaussian = 0.5 + 0.5*clamp((e.SeasonAvg-line)/math.Max(line, 1), -1, 1)
	}

	recentAvg := 0.6*e.Last5Avg + 0.4*e.Last10Avg
	scale := math.Max(line*0.2, 1)
	var recent float64
	if recentAvg > line {
		recent = 0.5 + 0.3*math.Min(1, (recentAvg-line)/scale)
	} else {
		recent = 0.5 - 0.3*math.Min(1, (line-recentAvg)/scale)
	}

	adj := 0.0
	if e.VsOpponentAvg != nil {
		switch {
		case *e.VsOpponentAvg > e.SeasonAvg:
			adj = 0.05
		case *e.VsOpponentAvg < e.SeasonAvg:
			adj = -0.05
		}
	}

	p := 0.35*empirical + 0.30*gaussian + 0.25*recent + 0.10*(0.5+adj)
	return clamp(p, minModelProb, maxModelProb)
}

// projection weights recent games over the season, blending in the
// opponent average when there is one.
func projection(e *Edge) float64 {
	base := 0.3*e.SeasonAvg + 0.35*e.Last10Avg + 0.35*e.Last5Avg
	if e.VsOpponentAvg != nil {
		base = 0.85*base + 0.15*(*e.VsOpponentAvg)
	}
	return base
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
