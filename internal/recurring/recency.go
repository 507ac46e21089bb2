package recurring

import "time"

// IsRecent reports whether a pattern last seen at last is still active at
// now, given its median interval and the staleness multiplier.
func IsRecent(last, now time.Time, medianInterval, multiplier float64) bool {
	return float64(daysBetween(last, now)) <= multiplier*medianInterval
}
