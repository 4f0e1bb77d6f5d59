package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/edge"
	"github.com/yourusername/sports-edge/internal/logger"
	"github.com/yourusername/sports-edge/internal/metrics"
	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/rating"
	"github.com/yourusername/sports-edge/internal/repository"
	"github.com/yourusername/sports-edge/internal/staking"
)

const (
	SkipReasonPlayed       = "already_played"
	SkipReasonMissingQuote = "missing_quote"
	SkipReasonInvalidQuote = "invalid_quote"
	SkipReasonNoHistory    = "insufficient_data"
)

// ErrLeagueNotConfigured is returned for leagues missing from the config
var ErrLeagueNotConfigured = errors.New("league is not configured")

// SlateRequest selects the games to evaluate
type SlateRequest struct {
	League   string
	From     time.Time
	To       time.Time
	Injuries []rating.Injury
	// Bankroll overrides the configured service bankroll when positive
	Bankroll decimal.Decimal
}

// GamePrediction is the evaluation of one scheduled game
type GamePrediction struct {
	Game       models.Game           `json:"game"`
	Snapshot   models.RatingSnapshot `json:"snapshot"`
	Quote      *models.MarketQuote   `json:"quote,omitempty"`
	Evaluation *edge.Result          `json:"evaluation,omitempty"`
	SkipReason string                `json:"skip_reason,omitempty"`
}

// Slate is the evaluated set of games with stakes
type Slate struct {
	League      string               `json:"league"`
	AsOf        time.Time            `json:"as_of"`
	Bankroll    decimal.Decimal      `json:"bankroll"`
	Games       []GamePrediction     `json:"games"`
	Allocations []staking.Allocation `json:"allocations"`
	Parlay      *staking.Parlay      `json:"parlay,omitempty"`
}

// PredictionService rates teams from stored history and evaluates upcoming
// games against the latest market quotes.
type PredictionService struct {
	repos      *repository.Repositories
	leagues    map[string]rating.Params
	evaluator  *edge.Evaluator
	allocator  *staking.Allocator
	validator  *DataValidator
	engines    *EngineCache
	bankroll   decimal.Decimal
	skipUnseen bool
	logger     *logrus.Logger
	predLogger *logger.PredictionLogger
	now        func() time.Time
}

// NewPredictionService wires the service from application config
func NewPredictionService(cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) (*PredictionService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if log == nil {
		log = logrus.New()
	}

	evaluator, err := edge.NewEvaluator(edge.FromConfig(cfg.Edge))
	if err != nil {
		return nil, fmt.Errorf("invalid edge config: %w", err)
	}
	allocator, err := staking.NewAllocator(staking.FromConfig(cfg.Staking), log)
	if err != nil {
		return nil, fmt.Errorf("invalid staking config: %w", err)
	}

	leagues := make(map[string]rating.Params, len(cfg.Leagues))
	for _, lc := range cfg.Leagues {
		params := rating.FromConfig(lc)
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("league %s: %w", lc.Name, err)
		}
		leagues[params.League] = params
	}

	ttl := time.Duration(cfg.Service.CacheTTLSeconds) * time.Second
	cleanup := time.Duration(cfg.Service.CacheCleanupSeconds) * time.Second

	return &PredictionService{
		repos:      repos,
		leagues:    leagues,
		evaluator:  evaluator,
		allocator:  allocator,
		validator:  NewDataValidator(log),
		engines:    NewEngineCache(ttl, cleanup),
		bankroll:   decimal.NewFromFloat(cfg.Service.Bankroll),
		skipUnseen: cfg.Edge.SkipInsufficientData,
		logger:     log,
		predLogger: logger.NewPredictionLogger(log),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// Leagues returns the configured league names
func (s *PredictionService) Leagues() []string {
	out := make([]string, 0, len(s.leagues))
	for name := range s.leagues {
		out = append(out, name)
	}
	return out
}

func (s *PredictionService) params(league string) (rating.Params, error) {
	p, ok := s.leagues[strings.ToUpper(league)]
	if !ok {
		return rating.Params{}, fmt.Errorf("%w: %s", ErrLeagueNotConfigured, league)
	}
	return p, nil
}

// RefreshRatings rebuilds a league's ratings from every game before now,
// stores the team ratings and swaps the cached engine.
func (s *PredictionService) RefreshRatings(ctx context.Context, league string) (*rating.Engine, error) {
	params, err := s.params(league)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	asOf := s.now()

	games, err := s.repos.Game.GetByLeague(ctx, params.League, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s history: %w", params.League, err)
	}

	engine, err := rating.NewEngine(params)
	if err != nil {
		return nil, err
	}
	if _, err := engine.BuildFeatures(games); err != nil {
		return nil, fmt.Errorf("failed to rate %s: %w", params.League, err)
	}

	ratings := engine.Ratings(asOf)
	if err := s.repos.TeamRating.UpsertBatch(ctx, ratings); err != nil {
		return nil, fmt.Errorf("failed to store %s ratings: %w", params.League, err)
	}
	s.engines.Set(params.League, engine)

	elapsed := time.Since(started)
	metrics.RecordRatingRefresh(params.League, elapsed.Seconds(), len(ratings))
	s.predLogger.LogRatingsRefreshed(params.League, engine.GamesApplied(), len(ratings), float64(elapsed.Milliseconds()))
	return engine, nil
}

// RefreshAll refreshes every configured league, stopping at the first error
func (s *PredictionService) RefreshAll(ctx context.Context) error {
	for _, league := range s.Leagues() {
		if _, err := s.RefreshRatings(ctx, league); err != nil {
			return err
		}
	}
	return nil
}

// Engine returns the cached engine for a league, building it on a miss
func (s *PredictionService) Engine(ctx context.Context, league string) (*rating.Engine, error) {
	if engine, ok := s.engines.Get(league); ok {
		return engine, nil
	}
	return s.RefreshRatings(ctx, league)
}

// Ratings returns the current table for a league, highest first
func (s *PredictionService) Ratings(ctx context.Context, league string) ([]models.TeamRating, error) {
	engine, err := s.Engine(ctx, league)
	if err != nil {
		return nil, err
	}
	return engine.Ratings(s.now()), nil
}

// EvaluateSlate predicts every unplayed game in the request window, evaluates
// the latest quote available before both now and tip-off, and sizes the
// recommended sides as one slate.
func (s *PredictionService) EvaluateSlate(ctx context.Context, req SlateRequest) (*Slate, error) {
	if req.To.Before(req.From) {
		return nil, fmt.Errorf("slate window ends before it starts")
	}
	params, err := s.params(req.League)
	if err != nil {
		return nil, err
	}
	engine, err := s.Engine(ctx, params.League)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	asOf := s.now()
	bankroll := s.bankroll
	if req.Bankroll.IsPositive() {
		bankroll = req.Bankroll
	}

	games, err := s.repos.Game.GetSchedule(ctx, params.League, req.From, req.To)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s schedule: %w", params.League, err)
	}

	adj := rating.AdjustmentsFromInjuries(req.Injuries)
	slate := &Slate{
		League:   params.League,
		AsOf:     asOf,
		Bankroll: bankroll,
		Games:    make([]GamePrediction, 0, len(games)),
	}
	var candidates []staking.Candidate

	for i := range games {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pred, err := s.predictGame(ctx, engine, &games[i], adj, asOf)
		if err != nil {
			return nil, err
		}
		if pred.Evaluation != nil {
			if c, ok := staking.CandidateFromResult(pred.Evaluation); ok {
				candidates = append(candidates, c)
			}
		}
		slate.Games = append(slate.Games, pred)
	}

	slate.Allocations = s.allocator.ProportionalAllocate(candidates, bankroll)
	for _, a := range slate.Allocations {
		metrics.RecordRecommendation(params.League, string(a.Tier))
		s.predLogger.LogRecommendation(a.GameID, string(a.Side), a.AmericanOdds, a.ExpectedValue, a.Edge, a.KellyFraction, string(a.Tier))
	}
	if parlay, ok := s.allocator.SelectParlayLegs(candidates); ok {
		slate.Parlay = &parlay
	}

	metrics.RecordSlateEvaluated(params.League)
	s.predLogger.LogSlateEvaluated(params.League, len(games), len(slate.Allocations), float64(time.Since(started).Milliseconds()))
	return slate, nil
}

func (s *PredictionService) predictGame(ctx context.Context, engine *rating.Engine, game *models.Game, adj rating.Adjustments, asOf time.Time) (GamePrediction, error) {
	snap := engine.Snapshot(game)
	snap.Probabilities = engine.PredictAdjusted(game.HomeTeam, game.AwayTeam, adj)
	pred := GamePrediction{Game: *game, Snapshot: snap}

	if game.IsPlayed() {
		pred.SkipReason = SkipReasonPlayed
		return pred, nil
	}

	cutoff := asOf
	if game.Date.Before(cutoff) {
		cutoff = game.Date
	}
	quote, err := s.repos.Quote.GetLatest(ctx, game.ID, cutoff)
	if errors.Is(err, models.ErrNotFound) {
		pred.SkipReason = SkipReasonMissingQuote
		return pred, nil
	}
	if err != nil {
		return pred, fmt.Errorf("failed to load quote for %s: %w", game.ID, err)
	}
	pred.Quote = quote

	if problems := s.validator.ValidateQuote(quote, game.Date); len(problems) > 0 {
		s.rejectQuote(game, fmt.Errorf("%s", strings.Join(problems, "; ")))
		pred.SkipReason = SkipReasonInvalidQuote
		return pred, nil
	}
	if s.skipUnseen && snap.InsufficientData() {
		pred.SkipReason = SkipReasonNoHistory
		return pred, nil
	}

	result, err := s.evaluator.Evaluate(snap.Probabilities, *quote)
	if err != nil {
		s.rejectQuote(game, err)
		pred.SkipReason = SkipReasonInvalidQuote
		return pred, nil
	}
	pred.Evaluation = result
	return pred, nil
}

func (s *PredictionService) rejectQuote(game *models.Game, err error) {
	metrics.RecordQuoteRejected(game.League)
	s.predLogger.LogQuoteRejected(game.ID, err)
}
