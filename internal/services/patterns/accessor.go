// Package patterns owns reads and writes of seasonal pattern records.
package patterns

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
)

const maxVolatility = 100

// Accessor resolves (product, season) keys against a PatternStore.
type Accessor struct {
	store repository.PatternStore
}

// NewAccessor returns an Accessor over store.
func NewAccessor(store repository.PatternStore) *Accessor {
	return &Accessor{store: store}
}

// Get returns the stored pattern, or found=false if the key was never set.
func (a *Accessor) Get(ctx context.Context, productID uint64, season models.Season) (models.SeasonalPattern, bool, error) {
	if !season.IsValid() {
		return models.SeasonalPattern{}, false, fmt.Errorf("%w: season %q", service.ErrInvalidParameter, season)
	}
	return a.store.GetPattern(ctx, productID, season)
}

// Update validates the new values, derives the volatility score from the prior
// record and overwrites the record. Nothing is written when validation fails.
func (a *Accessor) Update(ctx context.Context, productID uint64, season models.Season, demandMultiplier, historicalAverage int64) (bool, error) {
	if _, err := a.Put(ctx, productID, season, demandMultiplier, historicalAverage); err != nil {
		return false, err
	}
	return true, nil
}

// Put is Update returning the record it wrote.
func (a *Accessor) Put(ctx context.Context, productID uint64, season models.Season, demandMultiplier, historicalAverage int64) (models.SeasonalPattern, error) {
	if !season.IsValid() {
		return models.SeasonalPattern{}, fmt.Errorf("%w: season %q", service.ErrInvalidParameter, season)
	}
	if demandMultiplier < 0 {
		return models.SeasonalPattern{}, fmt.Errorf("%w: demand multiplier %d is negative", service.ErrInvalidParameter, demandMultiplier)
	}
	if historicalAverage < 0 {
		return models.SeasonalPattern{}, fmt.Errorf("%w: historical average %d is negative", service.ErrInvalidParameter, historicalAverage)
	}

	prior, found, err := a.store.GetPattern(ctx, productID, season)
	if err != nil {
		return models.SeasonalPattern{}, fmt.Errorf("read prior pattern: %w", err)
	}

	var volatility int64
	if found {
		volatility = VolatilityScore(prior.HistoricalAverage, historicalAverage)
	}

	next := models.SeasonalPattern{
		DemandMultiplier:  demandMultiplier,
		HistoricalAverage: historicalAverage,
		VolatilityScore:   volatility,
	}
	if err := a.store.PutPattern(ctx, productID, season, next); err != nil {
		return models.SeasonalPattern{}, fmt.Errorf("write pattern: %w", err)
	}
	return next, nil
}

// VolatilityScore is |next-prev|*100/max(prev,1), clamped to [0,100].
// Both inputs are non-negative; the product is formed in 128 bits so it cannot overflow.
func VolatilityScore(prev, next int64) int64 {
	if prev < 0 || next < 0 {
		return maxVolatility
	}
	var diff uint64
	if next >= prev {
		diff = uint64(next - prev)
	} else {
		diff = uint64(prev - next)
	}
	den := uint64(prev)
	if den < 1 {
		den = 1
	}
	// anything at or beyond a 100% move saturates
	if diff >= den {
		return maxVolatility
	}
	hi, lo := bits.Mul64(diff, maxVolatility)
	q, _ := bits.Div64(hi, lo, den)
	return int64(q)
}

var _ service.PatternAccessor = (*Accessor)(nil)
