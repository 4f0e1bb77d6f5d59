package repository

import (
	"fmt"

	"github.com/yourusername/sports-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Game        GameRepository
	Quote       QuoteRepository
	TeamRating  TeamRatingRepository
	BacktestRun BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Game:        NewPostgresGameRepository(db),
		Quote:       NewPostgresQuoteRepository(db),
		TeamRating:  NewPostgresTeamRatingRepository(db),
		BacktestRun: NewPostgresBacktestRunRepository(db),
	}, nil
}
