package forecast

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/service"
)

func TestGenerate_LinearSeriesNoPattern(t *testing.T) {
	series := []int64{80, 85, 90, 95, 100, 105, 110, 115, 120, 125, 130, 135}

	f, err := Generate(series, 1, nil, 1000)
	require.NoError(t, err)

	// sum 1290 / 12 points, floored
	assert.Equal(t, int64(107), f.BaseDemand())
	assert.Equal(t, int64(2), f.Factors[models.FactorTrendAdjustment])
	assert.Equal(t, int64(0), f.Factors[models.FactorSeasonalAdjustment])
	assert.Equal(t, int64(109), f.PredictedDemand)
	assert.Equal(t, int64(87), f.ConfidenceLevel)
	assert.Equal(t, models.AlgorithmSimpleTrend, f.AlgorithmUsed)
	assert.Equal(t, uint64(1000), f.CreatedAt)
	assert.Equal(t, int64(0), f.Factors[models.FactorReserved1])
	assert.Equal(t, int64(0), f.Factors[models.FactorReserved2])
	assert.GreaterOrEqual(t, f.PredictedDemand, f.BaseDemand())
}

func TestGenerate_InsufficientData(t *testing.T) {
	for _, series := range [][]int64{nil, {}, {100}, {100, 110}, {100, 110, 120}} {
		_, err := Generate(series, 1, nil, 1)
		assert.ErrorIs(t, err, service.ErrInsufficientData, "len=%d", len(series))
	}
}

func TestGenerate_InvalidHorizon(t *testing.T) {
	series := []int64{1, 2, 3, 4}
	for _, h := range []int64{0, -1, math.MinInt64} {
		_, err := Generate(series, h, nil, 1)
		assert.ErrorIs(t, err, service.ErrInvalidHorizon)
	}
}

func TestGenerate_ShortSeriesCheckedBeforeHorizon(t *testing.T) {
	_, err := Generate([]int64{1, 2}, 0, nil, 1)
	assert.ErrorIs(t, err, service.ErrInsufficientData)
}

func TestGenerate_ConstantSeries(t *testing.T) {
	for _, c := range []int64{0, 1, 42, 1_000_000} {
		for n := MinSeriesLength; n <= 20; n++ {
			series := make([]int64, n)
			for i := range series {
				series[i] = c
			}
			f, err := Generate(series, 3, nil, 7)
			require.NoError(t, err)
			assert.Equal(t, c, f.PredictedDemand)
			assert.Equal(t, int64(0), f.Factors[models.FactorTrendAdjustment])
		}
	}
}

func TestGenerate_DownwardTrend(t *testing.T) {
	f, err := Generate([]int64{130, 120, 110, 100}, 1, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(115), f.BaseDemand())
	assert.Equal(t, int64(-5), f.Factors[models.FactorTrendAdjustment])
	assert.Equal(t, int64(110), f.PredictedDemand)
	assert.Equal(t, int64(60), f.ConfidenceLevel)
}

func TestGenerate_HorizonProjectsTrend(t *testing.T) {
	f, err := Generate([]int64{100, 110, 120, 130}, 4, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), f.Factors[models.FactorTrendAdjustment])
	assert.Equal(t, int64(135), f.PredictedDemand)
}

func TestGenerate_WithPattern(t *testing.T) {
	series := []int64{100, 100, 100, 100, 100, 100, 100, 100}

	f, err := Generate(series, 1, &models.SeasonalPattern{DemandMultiplier: 120, VolatilityScore: 50}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(20), f.Factors[models.FactorSeasonalAdjustment])
	assert.Equal(t, int64(120), f.PredictedDemand)
	// 100 - 40*4/8 - 50*40/100
	assert.Equal(t, int64(60), f.ConfidenceLevel)

	f, err = Generate(series, 1, &models.SeasonalPattern{DemandMultiplier: 0}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(-100), f.Factors[models.FactorSeasonalAdjustment])
	assert.Equal(t, int64(0), f.PredictedDemand)
}

func TestGenerate_PredictedFlooredAtZero(t *testing.T) {
	f, err := Generate([]int64{0, 0, 0, 100, 0}, 10, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), f.BaseDemand())
	assert.Equal(t, int64(-500), f.Factors[models.FactorTrendAdjustment])
	assert.Equal(t, int64(0), f.PredictedDemand)
}

func TestGenerate_Overflow(t *testing.T) {
	big := int64(math.MaxInt64 / 2)
	_, err := Generate([]int64{big, big, big, big}, 1, nil, 1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)

	_, err = Generate([]int64{0, 0, 0, 1_000_000}, math.MaxInt64, nil, 1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)

	_, err = Generate([]int64{1 << 40, 1 << 40, 1 << 40, 1 << 40}, 1,
		&models.SeasonalPattern{DemandMultiplier: 1 << 40}, 1)
	assert.ErrorIs(t, err, service.ErrArithmeticOverflow)
}

func TestGenerate_Idempotent(t *testing.T) {
	series := []int64{12, 40, 33, 51, 48, 60}
	pattern := &models.SeasonalPattern{DemandMultiplier: 90, HistoricalAverage: 40, VolatilityScore: 12}
	snapshot := append([]int64(nil), series...)

	a, err := Generate(series, 2, pattern, 55)
	require.NoError(t, err)
	b, err := Generate(series, 2, pattern, 55)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, snapshot, series, "series must not be mutated")
}

func TestGenerate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		n := MinSeriesLength + rng.Intn(40)
		series := make([]int64, n)
		for j := range series {
			series[j] = rng.Int63n(10_000)
		}
		var pattern *models.SeasonalPattern
		if rng.Intn(2) == 0 {
			pattern = &models.SeasonalPattern{
				DemandMultiplier: rng.Int63n(300),
				VolatilityScore:  rng.Int63n(101),
			}
		}
		horizon := 1 + rng.Int63n(12)

		f, err := Generate(series, horizon, pattern, uint64(i))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, f.ConfidenceLevel, int64(0))
		assert.LessOrEqual(t, f.ConfidenceLevel, int64(100))
		assert.GreaterOrEqual(t, f.PredictedDemand, int64(0))

		if pattern != nil {
			continue
		}
		switch ClassifyTrend(series) {
		case models.TrendUpward:
			assert.GreaterOrEqual(t, f.PredictedDemand, f.BaseDemand())
		case models.TrendDownward:
			assert.LessOrEqual(t, f.PredictedDemand, f.BaseDemand())
		default:
			assert.Equal(t, f.BaseDemand(), f.PredictedDemand)
		}
	}
}

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, models.TrendUpward, ClassifyTrend([]int64{100, 110, 120, 130}))
	assert.Equal(t, models.TrendDownward, ClassifyTrend([]int64{130, 120, 110, 100}))
	assert.Equal(t, models.TrendStable, ClassifyTrend([]int64{100, 100, 100, 100}))
	assert.Equal(t, models.TrendStable, ClassifyTrend([]int64{5}))
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, int64(60), Confidence(4, nil))
	assert.Equal(t, int64(80), Confidence(8, nil))
	assert.Equal(t, int64(98), Confidence(64, nil))
	assert.Equal(t, int64(20), Confidence(4, &models.SeasonalPattern{VolatilityScore: 100}))
	assert.Equal(t, int64(20), Confidence(4, &models.SeasonalPattern{VolatilityScore: 5000}))
	assert.Equal(t, int64(60), Confidence(4, &models.SeasonalPattern{VolatilityScore: -3}))
}
