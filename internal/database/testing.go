package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/sports-edge/internal/config"
)

// TestDSNEnv names the variable holding the integration test database DSN.
const TestDSNEnv = "SPORTS_EDGE_TEST_DATABASE_CONFIG"

// SetupTestDB connects to the integration database and applies the schema.
// The test is skipped when no test configuration is provided.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	path := os.Getenv(TestDSNEnv)
	if path == "" {
		t.Skipf("integration test - set %s to a config file to run", TestDSNEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB empties the tables and closes the connection
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.pool.Exec(ctx, "TRUNCATE odds, games, team_ratings, backtest_runs"); err != nil {
		t.Logf("warning: failed to truncate test database: %v", err)
	}
	db.Close()
}
