package models

import "time"

// Snapshot sources
const (
	SourceLive      = "live"
	SourceFallback  = "fallback"
	SourcePersisted = "persisted"
)

// Snapshot is the complete published result of one refresh cycle.
type Snapshot struct {
	Records     []StockRecord `json:"records"`
	PublishedAt time.Time     `json:"published_at"`
	Degraded    bool          `json:"degraded"`
	CycleID     string        `json:"cycle_id"`
	Source      string        `json:"source"`
}

// Len returns the number of records, tolerating a nil snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Age returns how long ago the snapshot was published.
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s == nil || s.PublishedAt.IsZero() {
		return 0
	}
	return now.Sub(s.PublishedAt)
}

// SnapshotEvent is emitted to listeners each time a snapshot is published.
type SnapshotEvent struct {
	Type        string    `json:"type"`
	CycleID     string    `json:"cycle_id"`
	PublishedAt time.Time `json:"published_at"`
	Records     int       `json:"records"`
	Failed      int       `json:"failed"`
	Degraded    bool      `json:"degraded"`
	Source      string    `json:"source"`
}

// EventSnapshotPublished is the event type for a new snapshot.
const EventSnapshotPublished = "snapshot_published"
