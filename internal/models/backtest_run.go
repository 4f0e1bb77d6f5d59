package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted backtest run
type BacktestRun struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	League      string          `db:"league" json:"league"`
	StartDate   time.Time       `db:"start_date" json:"start_date"`
	EndDate     time.Time       `db:"end_date" json:"end_date"`
	ConfigJSON  json.RawMessage `db:"config_json" json:"config"`
	MetricsJSON json.RawMessage `db:"metrics_json" json:"metrics"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
