// Package config provides configuration management for the sports-edge application.
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
	Leagues  []LeagueConfig `mapstructure:"leagues" validate:"required,min=1,dive"`
	Edge     EdgeConfig     `mapstructure:"edge" validate:"required"`
	Staking  StakingConfig  `mapstructure:"staking" validate:"required"`
	Props    PropsConfig    `mapstructure:"props"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	Service  ServiceConfig  `mapstructure:"service" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// SecretsConfig points at the AWS Secrets Manager entry overlaid on startup
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// LeagueConfig overrides rating parameters for one league. Zero values keep
// the league's built-in defaults.
type LeagueConfig struct {
	Name                string   `mapstructure:"name" validate:"required,league"`
	InitialRating       float64  `mapstructure:"initial_rating" validate:"gte=0"`
	KFactor             float64  `mapstructure:"k_factor" validate:"gte=0"`
	HomeAdvantage       *float64 `mapstructure:"home_advantage"`
	AllowDraws          *bool    `mapstructure:"allow_draws"`
	DefaultDrawRate     float64  `mapstructure:"default_draw_rate" validate:"gte=0,lt=1"`
	MinDrawRate         float64  `mapstructure:"min_draw_rate" validate:"gte=0,lt=1"`
	MinGamesForDrawRate int      `mapstructure:"min_games_for_draw_rate" validate:"gte=0"`
}

// EdgeConfig represents edge evaluation configuration
type EdgeConfig struct {
	MinEdgeThreshold     float64 `mapstructure:"min_edge_threshold" validate:"gte=0,lt=1"`
	KellyCap             float64 `mapstructure:"kelly_cap" validate:"gte=0,lte=1"`
	KellyMultiplier      float64 `mapstructure:"kelly_multiplier" validate:"gte=0,lte=1"`
	ShrinkWeight         float64 `mapstructure:"shrink_weight" validate:"gte=0,lte=1"`
	SkipInsufficientData bool    `mapstructure:"skip_insufficient_data"`
}

// PropsConfig represents player prop analysis configuration
type PropsConfig struct {
	MinGames        int     `mapstructure:"min_games" validate:"gte=0"`
	MinEdge         float64 `mapstructure:"min_edge" validate:"gte=0,lt=100"`
	MinEV           float64 `mapstructure:"min_ev" validate:"gte=0"`
	ShrinkWeight    float64 `mapstructure:"shrink_weight" validate:"gte=0,lte=1"`
	KellyMultiplier float64 `mapstructure:"kelly_multiplier" validate:"gte=0,lte=1"`
	MaxStake        float64 `mapstructure:"max_stake" validate:"gte=0,lte=1"`
	TopN            int     `mapstructure:"top_n" validate:"gte=0"`
}

// StakingConfig represents bankroll allocation and parlay configuration
type StakingConfig struct {
	TopN          int     `mapstructure:"top_n" validate:"gte=0"`
	MaxTotalRisk  float64 `mapstructure:"max_total_risk" validate:"gte=0,lte=1"`
	MaxParlayLegs int     `mapstructure:"max_parlay_legs" validate:"gte=0"`
	ParlayMargin  float64 `mapstructure:"parlay_margin" validate:"gte=0,lt=1"`
	LegProbCap    float64 `mapstructure:"leg_prob_cap" validate:"gte=0,lte=1"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	StartDate            string  `mapstructure:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate              string  `mapstructure:"end_date" validate:"required,datetime=2006-01-02"`
	InitialBankroll      float64 `mapstructure:"initial_bankroll" validate:"required,gt=0"`
	OutputPath           string  `mapstructure:"output_path" validate:"required"`
	MonteCarloIterations int     `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	MonteCarloSeed       int64   `mapstructure:"monte_carlo_seed"`
	WindowCount          int     `mapstructure:"window_count" validate:"gte=0"`
	PersistResults       bool    `mapstructure:"persist_results"`
}

// ServiceConfig represents the live prediction service configuration
type ServiceConfig struct {
	Bankroll            float64 `mapstructure:"bankroll" validate:"required,gt=0"`
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	CacheCleanupSeconds int     `mapstructure:"cache_cleanup_seconds" validate:"required,gt=0"`
}

// ScheduleConfig represents scheduled jobs
type ScheduleConfig struct {
	RatingRefresh string `mapstructure:"rating_refresh" validate:"omitempty,cronspec"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// League returns the configuration for a league, matched case-insensitively.
func (c *Config) League(name string) (LeagueConfig, bool) {
	for _, l := range c.Leagues {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return LeagueConfig{}, false
}

// LeagueNames lists configured leagues in file order.
func (c *Config) LeagueNames() []string {
	names := make([]string, 0, len(c.Leagues))
	for _, l := range c.Leagues {
		names = append(names, strings.ToUpper(l.Name))
	}
	return names
}
