package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/models"
	"github.com/yourusername/sports-edge/internal/odds"
)

// DataValidator validates games and quotes before they reach the engines
type DataValidator struct {
	validate *validator.Validate
	logger   *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DataValidator{
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateGame checks required fields and score consistency
func (v *DataValidator) ValidateGame(game *models.Game) []string {
	var problems []string

	if err := v.validate.Struct(game); err != nil {
		problems = append(problems, fieldErrors(err)...)
	}

	if (game.HomeScore == nil) != (game.AwayScore == nil) {
		problems = append(problems, "home_score and away_score must both be set or both be empty")
	}
	if game.HomeScore != nil && *game.HomeScore < 0 {
		problems = append(problems, fmt.Sprintf("home_score cannot be negative, got %d", *game.HomeScore))
	}
	if game.AwayScore != nil && *game.AwayScore < 0 {
		problems = append(problems, fmt.Sprintf("away_score cannot be negative, got %d", *game.AwayScore))
	}

	return problems
}

// ValidateQuote checks a quote is usable for a game at the given time. A quote
// recorded after the game started is rejected.
func (v *DataValidator) ValidateQuote(quote *models.MarketQuote, gameStart time.Time) []string {
	var problems []string

	if err := v.validate.Struct(quote); err != nil {
		problems = append(problems, fieldErrors(err)...)
	}

	for _, side := range quote.Sides() {
		price, _ := quote.OddsFor(side)
		if err := odds.ValidateAmerican(price); err != nil {
			problems = append(problems, fmt.Sprintf("%s odds: %v", side, err))
		}
	}

	if !quote.Timestamp.IsZero() && quote.Timestamp.After(gameStart) {
		problems = append(problems, fmt.Sprintf("quote recorded %v after game start", quote.Timestamp.Sub(gameStart)))
	}

	if len(problems) > 0 {
		v.logger.WithFields(logrus.Fields{
			"game_id":  quote.GameID,
			"problems": problems,
		}).Debug("Quote failed validation")
	}
	return problems
}

func fieldErrors(err error) []string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fe.Field()))
		case "nefield":
			out = append(out, fmt.Sprintf("%s must differ from %s", fe.Field(), fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return out
}
