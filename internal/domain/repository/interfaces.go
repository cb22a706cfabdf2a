package repository

import (
	"context"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
)

// ForecastStore is the forecasts[(productId, period)] table.
type ForecastStore interface {
	GetForecast(ctx context.Context, productID, period uint64) (models.Forecast, bool, error)
	PutForecast(ctx context.Context, productID, period uint64, f models.Forecast) error
}

// PatternStore is the seasonalPatterns[(productId, season)] table.
type PatternStore interface {
	GetPattern(ctx context.Context, productID uint64, season models.Season) (models.SeasonalPattern, bool, error)
	PutPattern(ctx context.Context, productID uint64, season models.Season, p models.SeasonalPattern) error
}

// StateStore groups both contract tables behind one lifecycle.
type StateStore interface {
	ForecastStore
	PatternStore
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits contract events after a write commits.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.ContractEvent) error
	Close() error
}

// Archive keeps an append-only history of committed records.
type Archive interface {
	AppendForecast(ctx context.Context, productID, period uint64, f models.Forecast) error
	AppendPattern(ctx context.Context, productID uint64, season models.Season, p models.SeasonalPattern) error
	ForecastHistory(ctx context.Context, productID uint64, limit int) ([]models.ForecastHistoryEntry, error)
	Close() error
}

type Metrics interface {
	RecordCall(op models.Operation, success bool)
	RecordError(code string)
	RecordConfidence(level int64)
	RecordLatency(op string, seconds float64)
}
