package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/logger"
	"github.com/yourusername/sports-edge/internal/metrics"
	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/rating"
	"github.com/yourusername/sports-edge/internal/repository"
	"github.com/yourusername/sports-edge/internal/strategy"
)

const (
	skipReasonMissingQuote = "missing_quote"
	skipReasonInvalidQuote = "invalid_quote"
	skipReasonBankrupt     = "bankroll_exhausted"
)

// betNamespace keys deterministic bet ids.
var betNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sports-edge/backtest/bet"))

// Engine orchestrates backtesting runs
type Engine struct {
	config       BacktestConfig
	ratingParams rating.Params
	repositories *repository.Repositories
	strategy     strategy.Strategy
	logger       *logrus.Logger
	btLogger     *logger.BacktestLogger
}

// NewEngine creates a new backtesting engine. Repositories are only needed by
// Run; Replay works on in-memory data.
func NewEngine(cfg BacktestConfig, params rating.Params, repos *repository.Repositories, strat strategy.Strategy, log *logrus.Logger) (*Engine, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config:       cfg,
		ratingParams: params,
		repositories: repos,
		strategy:     strat,
		logger:       log,
		btLogger:     logger.NewBacktestLogger(log, cfg.League),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() BacktestConfig {
	return e.config
}

// Logger returns the engine logger
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// WithConfig returns a copy of the engine using a different backtest window.
func (e *Engine) WithConfig(cfg BacktestConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clone := *e
	clone.config = cfg
	clone.btLogger = logger.NewBacktestLogger(e.logger, cfg.League)
	return &clone, nil
}

// Run loads league history and closing quotes, replays them and returns the
// final state and metrics. When PersistResults is set the run and the final
// ratings are stored.
func (e *Engine) Run(ctx context.Context) (*BacktestState, Metrics, error) {
	if e.repositories == nil {
		return nil, Metrics{}, fmt.Errorf("repositories are required to run a backtest")
	}
	started := time.Now()
	e.logger.WithFields(logrus.Fields{
		"league": e.config.League,
		"start":  e.config.StartDate,
		"end":    e.config.EndDate,
	}).Info("Starting backtest run")

	games, quotes, err := e.LoadInputs(ctx)
	if err != nil {
		metrics.RecordBacktestRun(e.config.League, "failure")
		return nil, Metrics{}, err
	}

	state, err := e.Replay(ctx, games, quotes)
	if err != nil {
		metrics.RecordBacktestRun(e.config.League, "failure")
		return nil, Metrics{}, err
	}
	result := CalculateMetrics(state, e.config)
	result.ParameterHash = HashParameters(e.Parameters())

	metrics.RecordBacktestRun(e.config.League, "success")
	metrics.RecordBacktestDuration(time.Since(started).Seconds())
	metrics.RecordBacktestResult(e.config.League, result.ROI, result.BrierScore)
	e.btLogger.LogRunCompleted(result.TotalBets, len(state.Skipped), result.ROI, result.MaxDrawdown, result.BrierScore)

	if e.config.PersistResults {
		if err := e.persist(ctx, state, result); err != nil {
			return state, result, err
		}
	}
	return state, result, nil
}

// LoadInputs reads every league game up to the end of the window and the
// closing quote of each game inside it.
func (e *Engine) LoadInputs(ctx context.Context) ([]models.Game, map[string]*models.MarketQuote, error) {
	if e.repositories == nil {
		return nil, nil, fmt.Errorf("repositories are required to run a backtest")
	}
	games, err := e.repositories.Game.GetByLeague(ctx, e.config.League, e.config.windowEnd())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load games: %w", err)
	}
	quotes, err := e.repositories.Quote.GetClosing(ctx, e.config.League, e.config.StartDate, e.config.windowEnd())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load quotes: %w", err)
	}
	return games, quotes, nil
}

// Replay walks games in (date, id) order. For each game it takes the
// pre-game rating snapshot, bets if the game is inside the window and has a
// quote, settles the bet against the final score and only then folds the
// result into the ratings. The same inputs always produce the same state.
func (e *Engine) Replay(ctx context.Context, games []models.Game, quotes map[string]*models.MarketQuote) (*BacktestState, error) {
	ratings, err := rating.NewEngine(e.ratingParams)
	if err != nil {
		return nil, err
	}
	state := NewBacktestState(e.config.InitialBankroll, e.config.StartDate)

	for i := range games {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		game := games[i]

		snap, err := ratings.Process(game)
		if err != nil {
			return nil, err
		}
		outcome, played := game.Winner()
		if !played || !e.config.InWindow(game.Date) {
			continue
		}

		state.Predictions = append(state.Predictions, PredictionRecord{
			GameID:  game.ID,
			Date:    game.Date,
			PHome:   snap.Probabilities.Home,
			PAway:   snap.Probabilities.Away,
			PDraw:   snap.Probabilities.Draw,
			Outcome: outcome,
		})

		if err := e.processGame(ctx, &game, snap, outcome, quotes[game.ID], state); err != nil {
			return nil, err
		}
	}

	state.FinalRatings = ratings.Ratings(e.config.EndDate)
	return state, nil
}

func (e *Engine) processGame(ctx context.Context, game *models.Game, snap models.RatingSnapshot, outcome models.Outcome, quote *models.MarketQuote, state *BacktestState) error {
	if quote == nil {
		e.skip(state, game.ID, skipReasonMissingQuote)
		return nil
	}
	if !state.CurrentBankroll.IsPositive() {
		e.skip(state, game.ID, skipReasonBankrupt)
		return nil
	}

	started := time.Now()
	signals, err := e.strategy.Evaluate(ctx, strategy.Context{
		Game:        game,
		Snapshot:    snap,
		Quote:       quote,
		CurrentTime: game.Date,
	})
	metrics.RecordEvaluation(time.Since(started).Seconds())
	if err != nil {
		e.btLogger.LogGameSkipped(game.ID, skipReasonInvalidQuote, err)
		state.RecordSkip(game.ID, skipReasonInvalidQuote)
		metrics.RecordGameSkipped(e.config.League, skipReasonInvalidQuote)
		return nil
	}

	for _, signal := range signals {
		if !e.strategy.ShouldBet(signal) {
			continue
		}
		stake := e.strategy.CalculateStake(signal, state.CurrentBankroll)
		if !stake.IsPositive() {
			continue
		}

		bet := e.PlaceBet(signal, game, stake)
		e.btLogger.LogBetPlaced(bet.GameID, string(bet.Side), bet.AmericanOdds, bet.Stake.InexactFloat64(), bet.ExpectedValue, string(bet.Tier))
		metrics.RecordBetPlaced(e.config.League)

		SettleBet(bet, outcome, quote.HasDraw())
		state.UpdateState(bet)
		state.RecordEquityPoint(game.Date, state.CurrentBankroll)
		e.btLogger.LogBetSettled(bet.GameID, string(bet.Status), bet.ProfitLoss.InexactFloat64(), state.CurrentBankroll.InexactFloat64())
		metrics.RecordBetSettled(e.config.League, string(bet.Status))
	}
	return nil
}

func (e *Engine) skip(state *BacktestState, gameID, reason string) {
	e.btLogger.LogGameSkipped(gameID, reason, nil)
	state.RecordSkip(gameID, reason)
	metrics.RecordGameSkipped(e.config.League, reason)
}

// PlaceBet creates a pending bet from a signal. Ids are derived from the game
// and side so repeated runs produce identical ledgers.
func (e *Engine) PlaceBet(signal strategy.Signal, game *models.Game, stake decimal.Decimal) *models.Bet {
	return &models.Bet{
		ID:            uuid.NewSHA1(betNamespace, []byte(game.ID+"/"+string(signal.Side))),
		GameID:        game.ID,
		League:        game.League,
		Side:          signal.Side,
		AmericanOdds:  signal.AmericanOdds,
		DecimalOdds:   signal.DecimalOdds,
		ModelProb:     signal.ModelProb,
		ExpectedValue: signal.ExpectedValue,
		Edge:          signal.Edge,
		KellyFraction: signal.KellyFraction,
		Tier:          signal.Tier,
		Stake:         stake,
		Status:        models.BetStatusPending,
		ProfitLoss:    decimal.Zero,
		PlacedAt:      game.Date,
	}
}

// SettleBet moves a pending bet to its final state. A draw settles as a push
// for home/away bets when the market had no draw price; otherwise a bet wins
// only if its side matches the outcome.
func SettleBet(bet *models.Bet, outcome models.Outcome, marketHasDraw bool) {
	if bet == nil || bet.IsSettled() {
		return
	}
	switch {
	case outcome == models.OutcomeDraw && bet.Side != models.SideDraw && !marketHasDraw:
		bet.Status = models.BetStatusSettledPush
		bet.ProfitLoss = decimal.Zero
	case bet.Side.Outcome() == outcome:
		bet.Status = models.BetStatusSettledWin
		bet.ProfitLoss = calculateProfit(bet.Stake, bet.AmericanOdds)
	default:
		bet.Status = models.BetStatusSettledLoss
		bet.ProfitLoss = bet.Stake.Neg()
	}
}

// calculateProfit is the winning profit for a stake at American odds,
// computed exactly and rounded to cents.
func calculateProfit(stake decimal.Decimal, american int) decimal.Decimal {
	odds := decimal.NewFromInt(int64(american))
	hundred := decimal.NewFromInt(100)
	if american > 0 {
		return stake.Mul(odds).Div(hundred).Round(2)
	}
	return stake.Mul(hundred).Div(odds.Neg()).Round(2)
}

// Parameters describes the run for hashing and persistence.
func (e *Engine) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"league":           e.config.League,
		"start_date":       e.config.StartDate.Format("2006-01-02"),
		"end_date":         e.config.EndDate.Format("2006-01-02"),
		"initial_bankroll": e.config.InitialBankroll.String(),
		"rating":           e.ratingParams,
		"strategy":         e.strategy.Name(),
		"strategy_params":  e.strategy.GetParameters(),
	}
}

func (e *Engine) persist(ctx context.Context, state *BacktestState, result Metrics) error {
	cfgJSON, err := json.Marshal(e.Parameters())
	if err != nil {
		return fmt.Errorf("failed to encode run config: %w", err)
	}
	metricsJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run metrics: %w", err)
	}

	run := &models.BacktestRun{
		ID:          uuid.New(),
		League:      e.config.League,
		StartDate:   e.config.StartDate,
		EndDate:     e.config.EndDate,
		ConfigJSON:  cfgJSON,
		MetricsJSON: metricsJSON,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.repositories.BacktestRun.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	if err := e.repositories.TeamRating.UpsertBatch(ctx, state.FinalRatings); err != nil {
		return fmt.Errorf("failed to save team ratings: %w", err)
	}
	e.logger.WithFields(logrus.Fields{"run_id": run.ID, "league": run.League}).Info("Backtest run saved")
	return nil
}
