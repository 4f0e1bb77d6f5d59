package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SPORTS_EDGE"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set environment variable prefix
	v.SetEnvPrefix(envPrefix)

	// Enable automatic binding of environment variables
	v.AutomaticEnv()

	// Replace dots with underscores in environment variable names
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	setDefaults(v)

	// Read and expand the configuration file if it exists
	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sports-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "sports_edge")
	v.SetDefault("database.user", "sports_edge")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("leagues", []map[string]interface{}{{"name": "NBA"}})

	v.SetDefault("edge.min_edge_threshold", 0.01)
	v.SetDefault("edge.kelly_cap", 0.05)
	v.SetDefault("edge.kelly_multiplier", 0.25)
	v.SetDefault("edge.shrink_weight", 1.0)

	v.SetDefault("staking.top_n", 5)
	v.SetDefault("staking.max_total_risk", 1.0)
	v.SetDefault("staking.max_parlay_legs", 3)
	v.SetDefault("staking.parlay_margin", 0.10)
	v.SetDefault("staking.leg_prob_cap", 0.95)

	v.SetDefault("props.min_games", 5)
	v.SetDefault("props.min_edge", 1.0)
	v.SetDefault("props.min_ev", 0.0)
	v.SetDefault("props.shrink_weight", 0.7)
	v.SetDefault("props.kelly_multiplier", 0.25)
	v.SetDefault("props.max_stake", 0.02)
	v.SetDefault("props.top_n", 20)

	v.SetDefault("backtest.initial_bankroll", 1000.0)
	v.SetDefault("backtest.output_path", "output/backtest")
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
	v.SetDefault("backtest.monte_carlo_seed", 42)

	v.SetDefault("service.bankroll", 1000.0)
	v.SetDefault("service.cache_ttl_seconds", 3600)
	v.SetDefault("service.cache_cleanup_seconds", 600)

	v.SetDefault("schedule.rating_refresh", "0 6 * * *")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
}

// ReloadFromEnv reloads the configuration when SPORTS_EDGE_CONFIG_PATH is set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
