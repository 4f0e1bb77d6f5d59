package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sports-edge/internal/models"
)

// GameRepository defines the interface for game data access
type GameRepository interface {
	Upsert(ctx context.Context, game *models.Game) error
	UpsertBatch(ctx context.Context, games []models.Game) error
	GetByID(ctx context.Context, id string) (*models.Game, error)
	// GetByLeague returns every game strictly before until, ordered by (date, id).
	GetByLeague(ctx context.Context, league string, until time.Time) ([]models.Game, error)
	// GetSchedule returns games in [from, to), ordered by (date, id).
	GetSchedule(ctx context.Context, league string, from, to time.Time) ([]models.Game, error)
}

// QuoteRepository defines the interface for moneyline quote data access
type QuoteRepository interface {
	Insert(ctx context.Context, quote *models.MarketQuote) error
	InsertBatch(ctx context.Context, quotes []models.MarketQuote) error
	// GetClosing returns, per game starting in [start, end), the last quote
	// recorded at or before the game's start.
	GetClosing(ctx context.Context, league string, start, end time.Time) (map[string]*models.MarketQuote, error)
	GetLatest(ctx context.Context, gameID string, asOf time.Time) (*models.MarketQuote, error)
}

// TeamRatingRepository defines the interface for rating data access
type TeamRatingRepository interface {
	UpsertBatch(ctx context.Context, ratings []models.TeamRating) error
	GetByLeague(ctx context.Context, league string) ([]models.TeamRating, error)
}

// BacktestRunRepository defines the interface for backtest run data access
type BacktestRunRepository interface {
	Create(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetRecent(ctx context.Context, league string, limit int) ([]*models.BacktestRun, error)
}
