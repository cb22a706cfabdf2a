package models

import "time"

// Operation names a contract entry point.
type Operation string

const (
	OpGenerateForecast      Operation = "generate-forecast"
	OpUpdateSeasonalPattern Operation = "update-seasonal-pattern"
	OpGetForecast           Operation = "get-forecast"
	OpGetSeasonalPattern    Operation = "get-seasonal-pattern"
)

// GenerateForecastInput carries the arguments of a generate-forecast call.
// Horizon defaults to 1 and an empty Season means no seasonal adjustment.
type GenerateForecastInput struct {
	Caller    string
	ProductID uint64
	Period    uint64
	Horizon   int64
	Season    Season
	History   []int64
}

// ContractEvent is emitted after a mutating call commits.
type ContractEvent struct {
	ID          string           `json:"id"`
	Operation   Operation        `json:"operation"`
	Caller      string           `json:"caller,omitempty"`
	ProductID   uint64           `json:"product_id"`
	Period      uint64           `json:"period,omitempty"`
	Season      Season           `json:"season,omitempty"`
	BlockHeight uint64           `json:"block_height"`
	Forecast    *Forecast        `json:"forecast,omitempty"`
	Pattern     *SeasonalPattern `json:"pattern,omitempty"`
	EmittedAt   time.Time        `json:"emitted_at"`
}

// ForecastHistoryEntry is one archived forecast row.
type ForecastHistoryEntry struct {
	ProductID  uint64    `json:"product_id"`
	Period     uint64    `json:"period"`
	Forecast   Forecast  `json:"forecast"`
	RecordedAt time.Time `json:"recorded_at"`
}
