// Package forecast implements the simple-trend demand forecast.
//
// Every step uses int64 arithmetic with explicit overflow checks so that the
// same inputs produce the same Forecast on every node.
package forecast

import (
	"fmt"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
)

const (
	// MinSeriesLength is the shortest series that yields a forecast.
	MinSeriesLength = 4
	// TrendDamping divides the last-step delta before it is projected.
	TrendDamping = 2
	// MaxConfidence is the confidence ceiling before penalties.
	MaxConfidence = 100
	// DataPenaltyCap is the data-sufficiency penalty at exactly MinSeriesLength points.
	// It shrinks as DataPenaltyCap*MinSeriesLength/len(series).
	DataPenaltyCap = 40
	// VolatilityPenaltyPct is the share of the pattern volatility score taken off confidence.
	VolatilityPenaltyPct = 40
)

// Engine is the stateless simple-trend forecaster.
type Engine struct{}

// New returns a forecast engine.
func New() *Engine { return &Engine{} }

// Generate implements service.ForecastEngine.
func (e *Engine) Generate(series []int64, horizon int64, pattern *models.SeasonalPattern, createdAt uint64) (models.Forecast, error) {
	return Generate(series, horizon, pattern, createdAt)
}

// Generate computes a forecast for series over horizon periods. pattern may be nil.
func Generate(series []int64, horizon int64, pattern *models.SeasonalPattern, createdAt uint64) (models.Forecast, error) {
	if len(series) < MinSeriesLength {
		return models.Forecast{}, fmt.Errorf("%w: got %d points, need at least %d",
			service.ErrInsufficientData, len(series), MinSeriesLength)
	}
	if horizon <= 0 {
		return models.Forecast{}, fmt.Errorf("%w: %d", service.ErrInvalidHorizon, horizon)
	}

	base, err := BaseDemand(series)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("base demand: %w", err)
	}
	trend, err := TrendAdjustment(series, horizon)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("trend adjustment: %w", err)
	}
	seasonal, err := SeasonalAdjustment(base, pattern)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("seasonal adjustment: %w", err)
	}

	predicted, err := addChecked(base, trend)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("predicted demand: %w", err)
	}
	predicted, err = addChecked(predicted, seasonal)
	if err != nil {
		return models.Forecast{}, fmt.Errorf("predicted demand: %w", err)
	}
	if predicted < 0 {
		predicted = 0
	}

	return models.Forecast{
		PredictedDemand: predicted,
		ConfidenceLevel: Confidence(len(series), pattern),
		AlgorithmUsed:   models.AlgorithmSimpleTrend,
		CreatedAt:       createdAt,
		Factors:         [models.FactorCount]int64{base, trend, seasonal, 0, 0},
	}, nil
}

// BaseDemand is the floored arithmetic mean of a non-empty series.
func BaseDemand(series []int64) (int64, error) {
	if len(series) == 0 {
		return 0, service.ErrInsufficientData
	}
	var sum int64
	for _, v := range series {
		var err error
		if sum, err = addChecked(sum, v); err != nil {
			return 0, err
		}
	}
	return floorDiv(sum, int64(len(series))), nil
}

// ClassifyTrend compares the last point of series with the one before it.
func ClassifyTrend(series []int64) models.Trend {
	if len(series) < 2 {
		return models.TrendStable
	}
	last, prev := series[len(series)-1], series[len(series)-2]
	switch {
	case last > prev:
		return models.TrendUpward
	case last < prev:
		return models.TrendDownward
	default:
		return models.TrendStable
	}
}

// TrendAdjustment returns the damped last-step delta projected over horizon periods.
func TrendAdjustment(series []int64, horizon int64) (int64, error) {
	if len(series) < 2 {
		return 0, nil
	}
	last, prev := series[len(series)-1], series[len(series)-2]

	var step int64
	switch ClassifyTrend(series) {
	case models.TrendUpward:
		delta, err := subChecked(last, prev)
		if err != nil {
			return 0, err
		}
		step = delta / TrendDamping
	case models.TrendDownward:
		delta, err := subChecked(prev, last)
		if err != nil {
			return 0, err
		}
		step = -(delta / TrendDamping)
	default:
		return 0, nil
	}
	return mulChecked(step, horizon)
}

// SeasonalAdjustment scales base by the pattern multiplier's distance from neutral.
// The quotient truncates toward zero. A nil pattern contributes nothing.
func SeasonalAdjustment(base int64, pattern *models.SeasonalPattern) (int64, error) {
	if pattern == nil {
		return 0, nil
	}
	diff, err := subChecked(pattern.DemandMultiplier, models.NeutralMultiplier)
	if err != nil {
		return 0, err
	}
	scaled, err := mulChecked(base, diff)
	if err != nil {
		return 0, err
	}
	return scaled / 100, nil
}

// Confidence scores data sufficiency and pattern volatility on a 0..100 scale.
func Confidence(points int, pattern *models.SeasonalPattern) int64 {
	conf := int64(MaxConfidence)
	if points > 0 {
		n := int64(points)
		dataPenalty := int64(DataPenaltyCap) * MinSeriesLength / n
		conf -= clamp(dataPenalty, 0, DataPenaltyCap)
	} else {
		conf -= DataPenaltyCap
	}
	if pattern != nil {
		vol := clamp(pattern.VolatilityScore, 0, 100)
		conf -= vol * VolatilityPenaltyPct / 100
	}
	return clamp(conf, 0, MaxConfidence)
}

var _ service.ForecastEngine = (*Engine)(nil)
