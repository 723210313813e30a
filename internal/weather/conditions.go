// Package weather implements the weather data gateway and the weather+alert
// composer: fetching and normalizing upstream conditions for a city, merging
// in community-verified hazard alerts, and handing the result to the
// commentary generator.
package weather

import "floe/internal/types"

// conditionBucket maps an inclusive range of WMO weather codes to a canonical
// condition label.
type conditionBucket struct {
	min, max  int
	condition types.Condition
}

// conditionBuckets is the single canonical bucketing table, applied uniformly
// to current conditions and daily forecasts. Ranges are ordered ascending and
// scanned in order; codes outside every range fall back to Cloudy.
//
// WMO interpretation codes: 0-1 clear/mainly clear, 2-3 partly cloudy to
// overcast, 45-48 fog, 51-67 drizzle and rain, 71-77 snow, 80-82 rain
// showers, 85-86 snow showers, 95-99 thunderstorm.
var conditionBuckets = []conditionBucket{
	{0, 1, types.ConditionClear},
	{2, 3, types.ConditionCloudy},
	{45, 48, types.ConditionFoggy},
	{51, 67, types.ConditionRainy},
	{71, 77, types.ConditionSnowy},
	{80, 82, types.ConditionRainy},
	{85, 86, types.ConditionSnowy},
	{95, 99, types.ConditionStormy},
}

// BucketCondition normalizes a provider WMO weather code into the canonical
// condition vocabulary.
func BucketCondition(code int) types.Condition {
	for _, b := range conditionBuckets {
		if code >= b.min && code <= b.max {
			return b.condition
		}
	}
	return types.ConditionCloudy
}
