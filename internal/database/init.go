package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Initialize creates a database connection pool and makes sure the schema exists
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Name,
		}).Info("Database initialized")
	}
	return db, nil
}

// Migrate applies the idempotent schema
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
