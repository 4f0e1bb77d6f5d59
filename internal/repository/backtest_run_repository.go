package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sports-edge/internal/database"
	"github.com/yourusername/sports-edge/internal/models"
)

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Create inserts a new backtest run
func (r *PostgresBacktestRunRepository) Create(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (id, league, start_date, end_date, config, metrics, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Conn(ctx).Exec(ctx, query,
		run.ID, run.League, run.StartDate, run.EndDate, []byte(run.ConfigJSON), []byte(run.MetricsJSON), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest run by ID
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `
		SELECT id, league, start_date, end_date, config, metrics, created_at
		FROM backtest_runs WHERE id = $1
	`
	run, err := scanBacktestRun(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return run, err
}

// GetRecent returns the latest runs for a league
func (r *PostgresBacktestRunRepository) GetRecent(ctx context.Context, league string, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT id, league, start_date, end_date, config, metrics, created_at
		FROM backtest_runs
		WHERE league = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Conn(ctx).Query(ctx, query, league, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run, err := scanBacktestRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate backtest runs: %w", err)
	}
	return runs, nil
}

func scanBacktestRun(row pgx.Row) (*models.BacktestRun, error) {
	run := &models.BacktestRun{}
	var cfg, metrics []byte
	err := row.Scan(&run.ID, &run.League, &run.StartDate, &run.EndDate, &cfg, &metrics, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan backtest run: %w", err)
	}
	run.ConfigJSON = cfg
	run.MetricsJSON = metrics
	return run, nil
}
