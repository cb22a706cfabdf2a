package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	pkgcache "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/cache"
)

const (
	forecastTable = "forecast"
	patternTable  = "pattern"
)

// ForecastKey is the state key of forecasts[(productID, period)].
func ForecastKey(productID, period uint64) string {
	return pkgcache.GenerateKeyWithParams(forecastTable, productID, period)
}

// PatternKey is the state key of seasonalPatterns[(productID, season)].
func PatternKey(productID uint64, season models.Season) string {
	return pkgcache.GenerateKeyWithParams(patternTable, productID, season)
}

// KVStateStore keeps both contract tables in a cache.Service backend.
// Records are written without expiration and never deleted.
type KVStateStore struct {
	kv pkgcache.Service
}

// NewKVStateStore wraps kv as the contract state store.
func NewKVStateStore(kv pkgcache.Service) repository.StateStore {
	return &KVStateStore{kv: kv}
}

func (s *KVStateStore) GetForecast(ctx context.Context, productID, period uint64) (models.Forecast, bool, error) {
	var f models.Forecast
	ok, err := s.load(ctx, ForecastKey(productID, period), &f)
	return f, ok, err
}

func (s *KVStateStore) PutForecast(ctx context.Context, productID, period uint64, f models.Forecast) error {
	return s.save(ctx, ForecastKey(productID, period), f)
}

func (s *KVStateStore) GetPattern(ctx context.Context, productID uint64, season models.Season) (models.SeasonalPattern, bool, error) {
	var p models.SeasonalPattern
	ok, err := s.load(ctx, PatternKey(productID, season), &p)
	return p, ok, err
}

func (s *KVStateStore) PutPattern(ctx context.Context, productID uint64, season models.Season, p models.SeasonalPattern) error {
	return s.save(ctx, PatternKey(productID, season), p)
}

func (s *KVStateStore) Health(ctx context.Context) error {
	return s.kv.Health(ctx)
}

func (s *KVStateStore) Close() error {
	return s.kv.Close()
}

func (s *KVStateStore) load(ctx context.Context, key string, dest interface{}) (bool, error) {
	var raw []byte
	if err := s.kv.Get(ctx, key, &raw); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return false, nil
		}
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *KVStateStore) save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, raw, 0); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
