package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	domrepo "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	domsvc "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
	xlogger "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/logger"
)

// DemandPrediction is the demand-prediction contract: two mutating entry points
// and two read-only accessors over the forecast and seasonal pattern tables.
//
// Mutating calls run one at a time. Every validation happens before the single
// state write, so a failed call leaves state untouched. Events and archive rows
// are emitted after the write commits.
type DemandPrediction struct {
	engine    domsvc.ForecastEngine
	patterns  domsvc.PatternAccessor
	forecasts domrepo.ForecastStore
	events    domrepo.EventPublisher
	archive   domrepo.Archive
	metrics   domrepo.Metrics
	clock     Clock
	logger    *xlogger.Logger

	txMu sync.Mutex
}

func NewDemandPrediction(
	engine domsvc.ForecastEngine,
	patterns domsvc.PatternAccessor,
	forecasts domrepo.ForecastStore,
	events domrepo.EventPublisher,
	archive domrepo.Archive,
	metrics domrepo.Metrics,
	clock Clock,
	logger *xlogger.Logger,
) *DemandPrediction {
	return &DemandPrediction{
		engine:    engine,
		patterns:  patterns,
		forecasts: forecasts,
		events:    events,
		archive:   archive,
		metrics:   metrics,
		clock:     clock,
		logger:    logger,
	}
}

// GenerateForecast computes and stores the forecast for (ProductID, Period) and
// returns the predicted demand.
func (d *DemandPrediction) GenerateForecast(ctx context.Context, in models.GenerateForecastInput) (predicted int64, err error) {
	start := time.Now()
	defer func() { d.observe(models.OpGenerateForecast, start, err) }()

	for i, v := range in.History {
		if v < 0 {
			return 0, fmt.Errorf("%w: historical value %d at index %d is negative", domsvc.ErrInvalidParameter, v, i)
		}
	}
	horizon := in.Horizon
	if horizon == 0 {
		horizon = 1
	}

	d.txMu.Lock()
	defer d.txMu.Unlock()

	var pattern *models.SeasonalPattern
	if in.Season != "" {
		p, found, err := d.patterns.Get(ctx, in.ProductID, in.Season)
		if err != nil {
			return 0, fmt.Errorf("lookup pattern: %w", err)
		}
		if found {
			pattern = &p
		}
	}

	// the height is only consumed once the engine accepts the input
	f, err := d.engine.Generate(in.History, horizon, pattern, d.clock.Height()+1)
	if err != nil {
		return 0, fmt.Errorf("generate forecast: %w", err)
	}
	if err := d.forecasts.PutForecast(ctx, in.ProductID, in.Period, f); err != nil {
		return 0, fmt.Errorf("store forecast: %w", err)
	}
	height := d.clock.Next()

	d.metrics.RecordConfidence(f.ConfidenceLevel)
	d.logger.Info("forecast generated",
		xlogger.String("caller", in.Caller),
		xlogger.Uint64("product_id", in.ProductID),
		xlogger.Uint64("period", in.Period),
		xlogger.Int64("predicted_demand", f.PredictedDemand),
		xlogger.Int64("confidence", f.ConfidenceLevel),
		xlogger.Uint64("height", height),
	)

	d.afterCommit(ctx, models.ContractEvent{
		Operation:   models.OpGenerateForecast,
		Caller:      in.Caller,
		ProductID:   in.ProductID,
		Period:      in.Period,
		Season:      in.Season,
		BlockHeight: height,
		Forecast:    &f,
	}, func(ctx context.Context) error {
		return d.archive.AppendForecast(ctx, in.ProductID, in.Period, f)
	})
	return f.PredictedDemand, nil
}

// UpdateSeasonalPattern writes the (productID, season) pattern and returns true on success.
func (d *DemandPrediction) UpdateSeasonalPattern(ctx context.Context, productID uint64, season models.Season, demandMultiplier, historicalAverage int64) (ok bool, err error) {
	start := time.Now()
	defer func() { d.observe(models.OpUpdateSeasonalPattern, start, err) }()

	d.txMu.Lock()
	defer d.txMu.Unlock()

	p, err := d.patterns.Put(ctx, productID, season, demandMultiplier, historicalAverage)
	if err != nil {
		return false, fmt.Errorf("update seasonal pattern: %w", err)
	}
	height := d.clock.Next()

	d.logger.Info("seasonal pattern updated",
		xlogger.Uint64("product_id", productID),
		xlogger.String("season", string(season)),
		xlogger.Int64("volatility", p.VolatilityScore),
		xlogger.Uint64("height", height),
	)

	d.afterCommit(ctx, models.ContractEvent{
		Operation:   models.OpUpdateSeasonalPattern,
		ProductID:   productID,
		Season:      season,
		BlockHeight: height,
		Pattern:     &p,
	}, func(ctx context.Context) error {
		return d.archive.AppendPattern(ctx, productID, season, p)
	})
	return true, nil
}

// GetForecast is the read-only accessor for forecasts[(productID, period)].
func (d *DemandPrediction) GetForecast(ctx context.Context, productID, period uint64) (f models.Forecast, found bool, err error) {
	start := time.Now()
	defer func() { d.observe(models.OpGetForecast, start, err) }()

	f, found, err = d.forecasts.GetForecast(ctx, productID, period)
	if err != nil {
		return models.Forecast{}, false, fmt.Errorf("get forecast: %w", err)
	}
	return f, found, nil
}

// GetSeasonalPattern is the read-only accessor for seasonalPatterns[(productID, season)].
func (d *DemandPrediction) GetSeasonalPattern(ctx context.Context, productID uint64, season models.Season) (p models.SeasonalPattern, found bool, err error) {
	start := time.Now()
	defer func() { d.observe(models.OpGetSeasonalPattern, start, err) }()

	p, found, err = d.patterns.Get(ctx, productID, season)
	if err != nil {
		return models.SeasonalPattern{}, false, fmt.Errorf("get seasonal pattern: %w", err)
	}
	return p, found, nil
}

// ForecastHistory lists archived forecasts for a product, newest first.
func (d *DemandPrediction) ForecastHistory(ctx context.Context, productID uint64, limit int) ([]models.ForecastHistoryEntry, error) {
	h, err := d.archive.ForecastHistory(ctx, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("forecast history: %w", err)
	}
	return h, nil
}

// Height reports the current block height.
func (d *DemandPrediction) Height() uint64 { return d.clock.Height() }

// afterCommit publishes ev and runs archive. Failures are logged and counted; the write stands.
func (d *DemandPrediction) afterCommit(ctx context.Context, ev models.ContractEvent, archive func(context.Context) error) {
	ev.ID = uuid.NewString()
	ev.EmittedAt = time.Now().UTC()

	if err := d.events.PublishEvent(ctx, ev); err != nil {
		d.metrics.RecordError("event_publish")
		d.logger.Error("publish contract event failed",
			xlogger.String("event_id", ev.ID),
			xlogger.String("operation", string(ev.Operation)),
			xlogger.Error(err),
		)
	}
	if err := archive(ctx); err != nil {
		d.metrics.RecordError("archive")
		d.logger.Error("archive record failed",
			xlogger.String("event_id", ev.ID),
			xlogger.String("operation", string(ev.Operation)),
			xlogger.Error(err),
		)
	}
}

func (d *DemandPrediction) observe(op models.Operation, start time.Time, err error) {
	d.metrics.RecordLatency(string(op), time.Since(start).Seconds())
	d.metrics.RecordCall(op, err == nil)
	if err != nil {
		code := domsvc.Code(err)
		d.metrics.RecordError(code)
		d.logger.Debug("contract call failed",
			xlogger.String("operation", string(op)),
			xlogger.String("code", code),
			xlogger.Error(err),
		)
	}
}
