package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
)

// ArchiveSchema returns the DDL for the archive tables in database db.
func ArchiveSchema(db string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.forecast_history (
			product_id UInt64, period UInt64, predicted_demand Int64, confidence_level Int64,
			algorithm LowCardinality(String), created_at UInt64, factors Array(Int64), recorded_at DateTime64(3)
		) ENGINE=MergeTree ORDER BY (product_id, recorded_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.pattern_history (
			product_id UInt64, season LowCardinality(String), demand_multiplier Int64,
			historical_average Int64, volatility_score Int64, recorded_at DateTime64(3)
		) ENGINE=MergeTree ORDER BY (product_id, season, recorded_at)`, db),
	}
}

// ClickHouseArchive appends every committed record to ClickHouse history tables.
type ClickHouseArchive struct {
	db       *sql.DB
	database string
	now      func() time.Time
}

// NewClickHouseArchive creates the archive over an open ClickHouse pool.
func NewClickHouseArchive(db *sql.DB, database string) repository.Archive {
	return &ClickHouseArchive{db: db, database: database, now: time.Now}
}

func (a *ClickHouseArchive) AppendForecast(ctx context.Context, productID, period uint64, f models.Forecast) error {
	q := fmt.Sprintf("INSERT INTO %s.forecast_history (product_id, period, predicted_demand, confidence_level, algorithm, created_at, factors, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", a.database)
	_, err := a.db.ExecContext(ctx, q,
		productID,
		period,
		f.PredictedDemand,
		f.ConfidenceLevel,
		string(f.AlgorithmUsed),
		f.CreatedAt,
		f.Factors[:],
		a.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive forecast: %w", err)
	}
	return nil
}

func (a *ClickHouseArchive) AppendPattern(ctx context.Context, productID uint64, season models.Season, p models.SeasonalPattern) error {
	q := fmt.Sprintf("INSERT INTO %s.pattern_history (product_id, season, demand_multiplier, historical_average, volatility_score, recorded_at) VALUES (?, ?, ?, ?, ?, ?)", a.database)
	_, err := a.db.ExecContext(ctx, q,
		productID,
		string(season),
		p.DemandMultiplier,
		p.HistoricalAverage,
		p.VolatilityScore,
		a.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive pattern: %w", err)
	}
	return nil
}

func (a *ClickHouseArchive) ForecastHistory(ctx context.Context, productID uint64, limit int) ([]models.ForecastHistoryEntry, error) {
	q := fmt.Sprintf("SELECT period, predicted_demand, confidence_level, algorithm, created_at, factors, recorded_at FROM %s.forecast_history WHERE product_id = ? ORDER BY recorded_at DESC LIMIT ?", a.database)
	rows, err := a.db.QueryContext(ctx, q, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.ForecastHistoryEntry
	for rows.Next() {
		var (
			e       models.ForecastHistoryEntry
			algo    string
			factors []int64
		)
		if err := rows.Scan(&e.Period, &e.Forecast.PredictedDemand, &e.Forecast.ConfidenceLevel, &algo,
			&e.Forecast.CreatedAt, &factors, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.ProductID = productID
		e.Forecast.AlgorithmUsed = models.Algorithm(algo)
		copy(e.Forecast.Factors[:], factors)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (a *ClickHouseArchive) Close() error {
	return nil // pool owned by pkg/clickhouse.Client
}

// NopArchive keeps no history. Used when ClickHouse is disabled.
type NopArchive struct{}

func (NopArchive) AppendForecast(context.Context, uint64, uint64, models.Forecast) error { return nil }
func (NopArchive) AppendPattern(context.Context, uint64, models.Season, models.SeasonalPattern) error {
	return nil
}
func (NopArchive) ForecastHistory(context.Context, uint64, int) ([]models.ForecastHistoryEntry, error) {
	return []models.ForecastHistoryEntry{}, nil
}
func (NopArchive) Close() error { return nil }
