// Package reports implements community verification of user-submitted weather
// reports: ingestion of (city, condition) claims, severity-tiered vote
// thresholds, and promotion of repeated reports to city-wide hazard alerts.
package reports

import "strings"

// Vote thresholds by severity tier. The ordering invariant
// severe <= moderate <= default is asserted by tests: the more dangerous a
// condition, the fewer independent reports are needed to broadcast it.
const (
	ThresholdSevere   = 2
	ThresholdModerate = 3
	ThresholdDefault  = 5
)

// severityTiers maps lowercased condition labels to their vote threshold.
// Unknown conditions fall through to ThresholdDefault.
var severityTiers = map[string]int{
	// Severe hazards: act on minimal consensus.
	"flood":   ThresholdSevere,
	"snow":    ThresholdSevere,
	"snowing": ThresholdSevere,
	"fire":    ThresholdSevere,

	// Moderate hazards.
	"rain":  ThresholdModerate,
	"rainy": ThresholdModerate,
	"wind":  ThresholdModerate,
	"windy": ThresholdModerate,
}

// Classify returns the vote threshold required to verify the given condition.
// Lookup is case-insensitive; anything outside the tier table (clear, cloudy,
// typos) requires the full default vote count.
func Classify(condition string) int {
	if threshold, ok := severityTiers[strings.ToLower(condition)]; ok {
		return threshold
	}
	return ThresholdDefault
}
