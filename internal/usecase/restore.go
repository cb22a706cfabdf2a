package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	domrepo "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	domsvc "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
	xlogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
)

// recordKey identifies one row of either table.
type recordKey struct {
	op        models.Operation
	productID uint64
	period    uint64
	season    models.Season
}

// StateRestorer rebuilds the forecast and pattern tables from the contract
// event log. Records are written as they were committed; nothing is
// recomputed. The clock is advanced to the highest height seen.
//
// A record is only written when its height is above the last one applied for
// the same key, so an out-of-order log cannot roll a key back.
type StateRestorer struct {
	store   domrepo.StateStore
	clock   *BlockClock
	metrics domrepo.Metrics
	logger  *xlogger.Logger

	mu      sync.Mutex
	applied map[recordKey]uint64
	skipped int
}

func NewStateRestorer(store domrepo.StateStore, clock *BlockClock, metrics domrepo.Metrics, logger *xlogger.Logger) *StateRestorer {
	return &StateRestorer{
		store:   store,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		applied: make(map[recordKey]uint64),
	}
}

// Apply writes the record carried by ev. Events without a record are skipped,
// as are events older than what was already applied for their key.
func (r *StateRestorer) Apply(ctx context.Context, ev models.ContractEvent) error {
	var key recordKey
	switch ev.Operation {
	case models.OpGenerateForecast:
		if ev.Forecast == nil {
			return fmt.Errorf("restore %s: %w: event carries no forecast", ev.ID, domsvc.ErrInvalidParameter)
		}
		key = recordKey{op: ev.Operation, productID: ev.ProductID, period: ev.Period}
	case models.OpUpdateSeasonalPattern:
		if ev.Pattern == nil || !ev.Season.IsValid() {
			return fmt.Errorf("restore %s: %w: event carries no valid pattern", ev.ID, domsvc.ErrInvalidParameter)
		}
		key = recordKey{op: ev.Operation, productID: ev.ProductID, season: ev.Season}
	default:
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.applied[key]; ok && ev.BlockHeight <= last {
		r.logger.Debug("stale event skipped",
			xlogger.String("event_id", ev.ID),
			xlogger.Uint64("height", ev.BlockHeight),
			xlogger.Uint64("applied_height", last),
		)
		r.clock.AdvanceTo(ev.BlockHeight)
		return nil
	}

	var err error
	if ev.Operation == models.OpGenerateForecast {
		err = r.store.PutForecast(ctx, ev.ProductID, ev.Period, *ev.Forecast)
	} else {
		err = r.store.PutPattern(ctx, ev.ProductID, ev.Season, *ev.Pattern)
	}
	if err != nil {
		return fmt.Errorf("restore %s: %w", ev.ID, err)
	}

	r.applied[key] = ev.BlockHeight
	r.clock.AdvanceTo(ev.BlockHeight)
	return nil
}

// ApplyMessage decodes a JSON event and applies it. Messages that do not
// decode or carry no usable record are logged, counted and skipped; only
// store failures abort the replay.
func (r *StateRestorer) ApplyMessage(ctx context.Context, key, value []byte) error {
	var ev models.ContractEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		r.skip(string(key), fmt.Errorf("decode event: %w", err))
		return nil
	}
	err := r.Apply(ctx, ev)
	if errors.Is(err, domsvc.ErrInvalidParameter) {
		r.skip(string(key), err)
		return nil
	}
	return err
}

// Skipped reports how many messages ApplyMessage dropped.
func (r *StateRestorer) Skipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

func (r *StateRestorer) skip(key string, err error) {
	r.mu.Lock()
	r.skipped++
	r.mu.Unlock()

	r.metrics.RecordError("replay_skipped")
	r.logger.Warn("unusable event skipped during replay",
		xlogger.String("key", key),
		xlogger.Error(err),
	)
}
