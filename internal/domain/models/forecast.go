package models

// Algorithm identifies the forecasting method that produced a Forecast.
type Algorithm string

const (
	AlgorithmSimpleTrend Algorithm = "simple-trend"
)

// FactorCount is the fixed length of Forecast.Factors.
const FactorCount = 5

// Factor indices within Forecast.Factors. The last two slots are reserved and always zero.
const (
	FactorBaseDemand = iota
	FactorTrendAdjustment
	FactorSeasonalAdjustment
	FactorReserved1
	FactorReserved2
)

// Forecast is the record stored under a (product, period) key.
type Forecast struct {
	PredictedDemand int64              `json:"predicted-demand"`
	ConfidenceLevel int64              `json:"confidence-level"`
	AlgorithmUsed   Algorithm          `json:"algorithm-used"`
	CreatedAt       uint64             `json:"created-at"`
	Factors         [FactorCount]int64 `json:"factors"`
}

// BaseDemand returns the unadjusted mean recorded in the diagnostic factors.
func (f Forecast) BaseDemand() int64 { return f.Factors[FactorBaseDemand] }

// Trend is the direction of the last two points of a series.
type Trend string

const (
	TrendUpward   Trend = "upward"
	TrendDownward Trend = "downward"
	TrendStable   Trend = "stable"
)
