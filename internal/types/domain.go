package types

import "time"

// Condition is the canonical label for a normalized weather condition.
// Provider-specific condition codes are bucketed into this small fixed
// vocabulary at the gateway boundary; nothing downstream ever sees a raw code.
type Condition string

const (
	ConditionClear  Condition = "Clear"
	ConditionCloudy Condition = "Cloudy"
	ConditionFoggy  Condition = "Foggy"
	ConditionRainy  Condition = "Rainy"
	ConditionSnowy  Condition = "Snowy"
	ConditionStormy Condition = "Stormy"
)

// Reading is a point-in-time weather observation for a city, normalized from
// the upstream provider's payload. It is produced fresh per request, never
// persisted, and immutable once constructed.
type Reading struct {
	City        string    `json:"city"`
	TempC       float64   `json:"temp_c"`
	TempF       float64   `json:"temp_f"`
	FeelsLikeC  float64   `json:"feels_like_c"`
	FeelsLikeF  float64   `json:"feels_like_f"`
	Humidity    int       `json:"humidity"`
	WindKph     float64   `json:"wind_kph"`
	WindMph     float64   `json:"wind_mph"`
	Condition   Condition `json:"condition"`
	IsDay       bool      `json:"is_day"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// ForecastDay is a single day of the daily forecast attached to a Reading.
// Slices of ForecastDay are always ordered by date ascending.
type ForecastDay struct {
	Date         string    `json:"date"` // YYYY-MM-DD in the city's timezone
	AvgTempC     float64   `json:"avg_temp_c"`
	Condition    Condition `json:"condition"`
	ChanceOfRain int       `json:"chance_of_rain"` // percentage 0-100
}

// Report is a single user-submitted claim about current conditions in a city.
// Reports are append-only: created on every report submission, never mutated,
// never deleted. City and condition are case-sensitive match keys, stored
// exactly as submitted.
type Report struct {
	ID        string    `json:"id"`
	City      string    `json:"city"`
	Condition string    `json:"condition"`
	CreatedAt time.Time `json:"created_at"`
}

// VerificationResult is the outcome of checking a (city, condition) pair
// against its vote threshold. It is derived state, recomputed on every query
// and never cached. VoteCount is always >= 0.
type VerificationResult struct {
	Verified  bool `json:"verified"`
	VoteCount int  `json:"vote_count"`
}

// Alert is a broadcast attached to a weather response when a watched hazard
// condition reaches verified status for a city. Computed fresh per request and
// not persisted. Hazard is the uppercased watch-list label.
type Alert struct {
	Hazard    string `json:"hazard"`
	VoteCount int    `json:"vote_count"`
	Text      string `json:"text"`
}
