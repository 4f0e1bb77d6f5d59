package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sports-edge/internal/config"
)

func TestConnString(t *testing.T) {
	cs := ConnString(&config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "edge",
		User:     "reader",
		Password: "secret",
		SSLMode:  "require",
	})
	assert.Equal(t, "host=db.internal port=5433 user=reader password=secret dbname=edge sslmode=require", cs)
}

func TestSchemaIsEmbedded(t *testing.T) {
	for _, table := range []string{"games", "odds", "team_ratings", "backtest_runs"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}

func TestWithTransactionRollsBack(t *testing.T) {
	db := SetupTestDB(t)
	defer TeardownTestDB(t, db)

	ctx := context.Background()
	sentinel := errors.New("boom")
	err := db.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := db.Conn(txCtx).Exec(txCtx,
			"INSERT INTO games (id, league, game_date, home_team, away_team) VALUES ('tx1', 'NBA', now(), 'A', 'B')")
		require.NoError(t, err)
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, db.Conn(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM games WHERE id = 'tx1'").Scan(&count))
	assert.Equal(t, 0, count)
	assert.NoError(t, db.HealthCheck(ctx))
}
