package common

import "time"

// StaleAfterIntervals is how many refresh intervals a published snapshot may
// age before it is reported as stale.
const StaleAfterIntervals = 3

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}

// SnapshotTTL returns the freshness window for a snapshot refreshed every interval.
func SnapshotTTL(interval time.Duration) time.Duration {
	return StaleAfterIntervals * interval
}
