package service

import (
	"context"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
)

// ForecastEngine computes a forecast from a demand series. Implementations must be pure.
type ForecastEngine interface {
	Generate(series []int64, horizon int64, pattern *models.SeasonalPattern, createdAt uint64) (models.Forecast, error)
}

// PatternAccessor reads and writes seasonal pattern records.
type PatternAccessor interface {
	Get(ctx context.Context, productID uint64, season models.Season) (models.SeasonalPattern, bool, error)
	Update(ctx context.Context, productID uint64, season models.Season, demandMultiplier, historicalAverage int64) (bool, error)
	// Put writes like Update and returns the stored record.
	Put(ctx context.Context, productID uint64, season models.Season, demandMultiplier, historicalAverage int64) (models.SeasonalPattern, error)
}
