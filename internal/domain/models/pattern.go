package models

import "strings"

// Season tags a seasonal pattern record.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

// IsValid reports whether s is one of the supported season tags.
func (s Season) IsValid() bool {
	switch s {
	case SeasonWinter, SeasonSpring, SeasonSummer, SeasonFall:
		return true
	default:
		return false
	}
}

// NormalizeSeason lowercases and trims raw input. The result may still be invalid.
func NormalizeSeason(raw string) Season {
	return Season(strings.ToLower(strings.TrimSpace(raw)))
}

// NeutralMultiplier is the demand multiplier that leaves demand unchanged.
const NeutralMultiplier = 100

// SeasonalPattern is the record stored under a (product, season) key.
type SeasonalPattern struct {
	DemandMultiplier  int64 `json:"demand-multiplier"`
	HistoricalAverage int64 `json:"historical-average"`
	VolatilityScore   int64 `json:"volatility-score"`
}
