package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sports-edge/internal/database"
	"github.com/yourusername/sports-edge/internal/models"
)

const (
	errScanGame = "failed to scan game: %w"

	gameColumns = `id, league, game_date, home_team, away_team, home_score, away_score`

	// COLLATE "C" keeps id ties in byte order, matching models.SortGames.
	gameOrder = `ORDER BY game_date, id COLLATE "C"`

	upsertGameQuery = `
		INSERT INTO games (id, league, game_date, home_team, away_team, home_score, away_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			game_date = EXCLUDED.game_date,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			updated_at = now()
	`
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Upsert inserts a game or updates its date and scores
func (r *PostgresGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	_, err := r.db.Conn(ctx).Exec(ctx, upsertGameQuery,
		game.ID, game.League, game.Date, game.HomeTeam, game.AwayTeam, game.HomeScore, game.AwayScore,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", game.ID, err)
	}
	return nil
}

// UpsertBatch upserts games in a single round trip
func (r *PostgresGameRepository) UpsertBatch(ctx context.Context, games []models.Game) error {
	if len(games) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range games {
		g := &games[i]
		batch.Queue(upsertGameQuery, g.ID, g.League, g.Date, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore)
	}

	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()
	for i := range games {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert game %s: %w", games[i].ID, err)
		}
	}
	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetByLeague retrieves the league history before until
func (r *PostgresGameRepository) GetByLeague(ctx context.Context, league string, until time.Time) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE league = $1 AND game_date < $2 ` + gameOrder
	return r.query(ctx, query, league, until)
}

// GetSchedule retrieves games in [from, to)
func (r *PostgresGameRepository) GetSchedule(ctx context.Context, league string, from, to time.Time) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE league = $1 AND game_date >= $2 AND game_date < $3 ` + gameOrder
	return r.query(ctx, query, league, from, to)
}

func (r *PostgresGameRepository) query(ctx context.Context, query string, args ...any) ([]models.Game, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return games, nil
}

func scanGame(row pgx.Row) (models.Game, error) {
	var g models.Game
	err := row.Scan(&g.ID, &g.League, &g.Date, &g.HomeTeam, &g.AwayTeam, &g.HomeScore, &g.AwayScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return g, err
	}
	if err != nil {
		return g, fmt.Errorf(errScanGame, err)
	}
	g.Date = g.Date.UTC()
	return g, nil
}
