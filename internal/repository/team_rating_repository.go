package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/sports-edge/internal/database"
	"github.com/yourusername/sports-edge/internal/models"
)

// PostgresTeamRatingRepository implements TeamRatingRepository for PostgreSQL
type PostgresTeamRatingRepository struct {
	db *database.DB
}

// NewPostgresTeamRatingRepository creates a new team rating repository
func NewPostgresTeamRatingRepository(db *database.DB) TeamRatingRepository {
	return &PostgresTeamRatingRepository{db: db}
}

// UpsertBatch stores the latest rating for each team
func (r *PostgresTeamRatingRepository) UpsertBatch(ctx context.Context, ratings []models.TeamRating) error {
	if len(ratings) == 0 {
		return nil
	}
	query := `
		INSERT INTO team_ratings (league, team, rating, games_played, as_of)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (league, team) DO UPDATE SET
			rating = EXCLUDED.rating,
			games_played = EXCLUDED.games_played,
			as_of = EXCLUDED.as_of
	`

	batch := &pgx.Batch{}
	for _, tr := range ratings {
		batch.Queue(query, tr.League, tr.Team, tr.Rating, tr.GamesPlayed, tr.AsOf)
	}
	results := r.db.Conn(ctx).SendBatch(ctx, batch)
	defer results.Close()
	for _, tr := range ratings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert rating for %s/%s: %w", tr.League, tr.Team, err)
		}
	}
	return nil
}

// GetByLeague returns ratings for a league, highest first
func (r *PostgresTeamRatingRepository) GetByLeague(ctx context.Context, league string) ([]models.TeamRating, error) {
	query := `
		SELECT league, team, rating, games_played, as_of
		FROM team_ratings
		WHERE league = $1
		ORDER BY rating DESC, team
	`
	rows, err := r.db.Conn(ctx).Query(ctx, query, league)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.TeamRating
	for rows.Next() {
		var tr models.TeamRating
		if err := rows.Scan(&tr.League, &tr.Team, &tr.Rating, &tr.GamesPlayed, &tr.AsOf); err != nil {
			return nil, fmt.Errorf("failed to scan team rating: %w", err)
		}
		ratings = append(ratings, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team ratings: %w", err)
	}
	return ratings, nil
}
