package models

// HTTP request models for the contract endpoints.

type GenerateForecastRequest struct {
	Caller         string  `json:"caller" validate:"required,max=128"`
	ProductID      uint64  `json:"product_id"`
	Period         uint64  `json:"period"`
	Horizon        int64   `json:"horizon" default:"1"`
	Season         string  `json:"season" validate:"omitempty,max=20"`
	HistoricalData []int64 `json:"historical_data" validate:"required"`
}

type ForecastKeyRequest struct {
	ProductID uint64 `param:"product_id"`
	Period    uint64 `param:"period"`
}

type ForecastHistoryRequest struct {
	ProductID uint64 `param:"product_id"`
	Limit     int    `query:"limit" default:"50" validate:"gte=1,lte=1000"`
}

type UpdatePatternRequest struct {
	ProductID         uint64 `param:"product_id"`
	Season            string `param:"season" validate:"required,max=20"`
	DemandMultiplier  *int64 `json:"demand_multiplier" validate:"required"`
	HistoricalAverage *int64 `json:"historical_average" validate:"required"`
}

type PatternKeyRequest struct {
	ProductID uint64 `param:"product_id"`
	Season    string `param:"season" validate:"required,max=20"`
}

// CallResult mirrors the {success, result} tuple returned by mutating contract calls.
type CallResult struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}
