// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/backtest"
	"github.com/yourusername/sports-edge/internal/config"
	"github.com/yourusername/sports-edge/internal/database"
	"github.com/yourusername/sports-edge/internal/logger"
	"github.com/yourusername/sports-edge/internal/rating"
	"github.com/yourusername/sports-edge/internal/repository"
	"github.com/yourusername/sports-edge/internal/strategy"
)

const dateLayout = "2006-01-02"

type options struct {
	configPath  string
	leagues     string
	startDate   string
	endDate     string
	mode        string
	output      string
	persist     bool
	concurrency int
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config/config.yaml", "Path to config file")
	flag.StringVar(&opts.leagues, "league", "", "Comma-separated leagues to test (default: all configured)")
	flag.StringVar(&opts.startDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	flag.StringVar(&opts.endDate, "end-date", "", "Override end date (YYYY-MM-DD)")
	flag.StringVar(&opts.mode, "mode", "all", "Backtest mode: historical, monte-carlo, walk-forward, all")
	flag.StringVar(&opts.output, "output", "", "Output directory for reports (default: backtest.output_path)")
	flag.BoolVar(&opts.persist, "persist", false, "Store runs and final ratings in the database")
	flag.IntVar(&opts.concurrency, "concurrency", 0, "Maximum leagues run at once (0 = all)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx, opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	if err := run(ctx, cfg, opts, log); err != nil {
		log.WithError(err).Fatal("Backtest failed")
	}
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, opts options, log *logrus.Logger) error {
	switch opts.mode {
	case "historical", "monte-carlo", "walk-forward", "all":
	default:
		return fmt.Errorf("unsupported mode: %s", opts.mode)
	}

	db, err := database.Initialize(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	engines, err := buildEngines(cfg, opts, repos, log)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{"mode": opts.mode, "leagues": len(engines)}).Info("Starting backtest")
	results, err := backtest.RunLeagues(ctx, engines, opts.concurrency)
	if err != nil {
		return err
	}

	outputDir := opts.output
	if outputDir == "" {
		outputDir = cfg.Backtest.OutputPath
	}
	for i, result := range results {
		report, err := buildReport(ctx, engines[i], result, opts.mode)
		if err != nil {
			return err
		}
		fmt.Println(backtest.GenerateConsoleReport(report))
		if err := writeArtifacts(outputDir, result, report); err != nil {
			return err
		}
	}
	log.WithField("output", outputDir).Info("Backtest completed")
	return nil
}

func buildEngines(cfg *config.Config, opts options, repos *repository.Repositories, log *logrus.Logger) ([]*backtest.Engine, error) {
	leagues := cfg.LeagueNames()
	if opts.leagues != "" {
		leagues = strings.Split(strings.ToUpper(opts.leagues), ",")
	}

	engines := make([]*backtest.Engine, 0, len(leagues))
	for _, name := range leagues {
		name = strings.TrimSpace(name)
		lc, ok := cfg.League(name)
		if !ok {
			return nil, fmt.Errorf("league %s is not configured", name)
		}

		btConfig, err := backtestConfig(cfg, name, opts)
		if err != nil {
			return nil, err
		}
		strat, err := strategy.NewEloValueFromConfig(cfg.Edge, cfg.Staking, log)
		if err != nil {
			return nil, err
		}
		engine, err := backtest.NewEngine(btConfig, rating.FromConfig(lc), repos, strat, log)
		if err != nil {
			return nil, fmt.Errorf("league %s: %w", name, err)
		}
		engines = append(engines, engine)
	}
	return engines, nil
}

func backtestConfig(cfg *config.Config, league string, opts options) (backtest.BacktestConfig, error) {
	btConfig, err := backtest.FromConfig(&cfg.Backtest, league)
	if err != nil {
		return btConfig, err
	}
	if opts.startDate != "" {
		if btConfig.StartDate, err = time.Parse(dateLayout, opts.startDate); err != nil {
			return btConfig, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if opts.endDate != "" {
		if btConfig.EndDate, err = time.Parse(dateLayout, opts.endDate); err != nil {
			return btConfig, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if opts.persist {
		btConfig.PersistResults = true
	}
	return btConfig, btConfig.Validate()
}

func buildReport(ctx context.Context, engine *backtest.Engine, result backtest.LeagueResult, mode string) (backtest.Report, error) {
	report := backtest.Report{Metrics: result.Metrics}
	cfg := engine.Config()

	if mode == "monte-carlo" || mode == "all" {
		if cfg.MonteCarloIterations > 0 {
			mc, err := backtest.RunMonteCarlo(ctx, result.State.Bets, backtest.MonteCarloConfig{
				Iterations:      cfg.MonteCarloIterations,
				Seed:            cfg.MonteCarloSeed,
				InitialBankroll: cfg.InitialBankroll.InexactFloat64(),
			})
			if err != nil {
				return report, fmt.Errorf("monte carlo %s: %w", cfg.League, err)
			}
			report.MonteCarlo = &mc
		}
	}

	if mode == "walk-forward" || mode == "all" {
		if cfg.WindowCount > 1 {
			games, quotes, err := engine.LoadInputs(ctx)
			if err != nil {
				return report, err
			}
			wf, err := backtest.RunWalkForward(ctx, engine, games, quotes, cfg.WindowCount)
			if err != nil {
				return report, fmt.Errorf("walk-forward %s: %w", cfg.League, err)
			}
			report.WalkForward = &wf
		}
	}
	return report, nil
}

func writeArtifacts(dir string, result backtest.LeagueResult, report backtest.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	prefix := filepath.Join(dir, strings.ToLower(result.League))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(prefix+"_report.json", data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := backtest.GenerateCSVExport(result.Metrics, prefix+"_metrics.csv"); err != nil {
		return err
	}
	if err := backtest.GenerateLedgerCSV(result.State, prefix+"_ledger.csv"); err != nil {
		return err
	}
	if err := os.WriteFile(prefix+"_equity.csv", []byte(result.State.EquityCurve.ToCSV()), 0o644); err != nil {
		return fmt.Errorf("failed to write equity curve: %w", err)
	}
	return nil
}
