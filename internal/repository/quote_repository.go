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

const quoteColumns = `o.game_id, o.book, o.source, o.recorded_at, o.home_odds, o.away_odds, o.draw_odds`

// PostgresQuoteRepository implements QuoteRepository for PostgreSQL
type PostgresQuoteRepository struct {
	db *database.DB
}

// NewPostgresQuoteRepository creates a new quote repository
func NewPostgresQuoteRepository(db *database.DB) QuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// Insert inserts a single quote
func (r *PostgresQuoteRepository) Insert(ctx context.Context, q *models.MarketQuote) error {
	query := `
		INSERT INTO odds (game_id, book, source, recorded_at, home_odds, away_odds, draw_odds)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (game_id, book, recorded_at) DO NOTHING
	`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		q.GameID, q.Book, q.Source, q.Timestamp, q.HomeOdds, q.AwayOdds, q.DrawOdds,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote for game %s: %w", q.GameID, err)
	}
	return nil
}

// InsertBatch inserts quotes using COPY
func (r *PostgresQuoteRepository) InsertBatch(ctx context.Context, quotes []models.MarketQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	columns := []string{"game_id", "book", "source", "recorded_at", "home_odds", "away_odds", "draw_odds"}
	rows := make([][]interface{}, len(quotes))
	for i, q := range quotes {
		rows[i] = []interface{}{q.GameID, q.Book, q.Source, q.Timestamp, q.HomeOdds, q.AwayOdds, q.DrawOdds}
	}

	count, err := r.db.Conn(ctx).CopyFrom(ctx, pgx.Identifier{"odds"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy quotes: %w", err)
	}
	if count != int64(len(quotes)) {
		return fmt.Errorf("expected to insert %d quotes, inserted %d", len(quotes), count)
	}
	return nil
}

// GetClosing picks one closing quote per game in the window
func (r *PostgresQuoteRepository) GetClosing(ctx context.Context, league string, start, end time.Time) (map[string]*models.MarketQuote, error) {
	query := `
		SELECT DISTINCT ON (o.game_id) ` + quoteColumns + `
		FROM odds o
		JOIN games g ON g.id = o.game_id
		WHERE g.league = $1 AND g.game_date >= $2 AND g.game_date < $3
		  AND o.recorded_at <= g.game_date
		ORDER BY o.game_id, o.recorded_at DESC, o.book
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, league, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query closing quotes: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]*models.MarketQuote)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes[q.GameID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}
	return quotes, nil
}

// GetLatest returns the most recent quote for a game recorded at or before asOf
func (r *PostgresQuoteRepository) GetLatest(ctx context.Context, gameID string, asOf time.Time) (*models.MarketQuote, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM odds o
		WHERE o.game_id = $1 AND o.recorded_at <= $2
		ORDER BY o.recorded_at DESC, o.book
		LIMIT 1
	`

	q, err := scanQuote(r.db.Conn(ctx).QueryRow(ctx, query, gameID, asOf))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	return q, err
}

func scanQuote(row pgx.Row) (*models.MarketQuote, error) {
	q := &models.MarketQuote{}
	err := row.Scan(&q.GameID, &q.Book, &q.Source, &q.Timestamp, &q.HomeOdds, &q.AwayOdds, &q.DrawOdds)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}
	q.Timestamp = q.Timestamp.UTC()
	return q, nil
}
