// Package main is the edge CLI: rating tables, slate predictions and the
// long-running refresh service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/database"
	"github.com/yourusername/sports-edge/internal/logger"
	"github.com/yourusername/sports-edge/internal/repository"
	"github.com/yourusername/sports-edge/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	log        *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	predictor  *service.PredictionService
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(predictCmd, ratingsCmd, runsCmd, serveCmd)
}

var rootCmd = &cobra.Command{
	Use:           "edge",
	Short:         "Point-in-time ratings and market edge",
	Long:          `Builds Elo ratings from stored results and compares them with moneyline quotes to size value bets.`,
	Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	log = logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	var err error
	db, err = database.Initialize(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	predictor, err = service.NewPredictionService(cfg, repos, log)
	if err != nil {
		return fmt.Errorf("failed to initialize prediction service: %w", err)
	}
	return nil
}
