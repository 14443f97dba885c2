// Package cache holds the live snapshot behind an atomic pointer.
package cache

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/bobmcallan/fnoscan/internal/models"
)

type entry struct {
	snap     *models.Snapshot
	bySymbol map[string]int
}

// Cache holds exactly one published snapshot. Readers never block and always
// see either the previous or the new snapshot in full.
type Cache struct {
	current atomic.Pointer[entry]
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Publish replaces the live snapshot. The snapshot must not be modified after
// it is published. A nil snapshot is ignored.
func (c *Cache) Publish(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	idx := make(map[string]int, len(snap.Records))
	for i, r := range snap.Records {
		idx[strings.ToUpper(r.Symbol)] = i
	}
	c.current.Store(&entry{snap: snap, bySymbol: idx})
}

// Snapshot returns the live snapshot, or nil before the first publish.
func (c *Cache) Snapshot() *models.Snapshot {
	if e := c.current.Load(); e != nil {
		return e.snap
	}
	return nil
}

// Records returns the live records. The slice is shared and must be treated
// as read-only.
func (c *Cache) Records() []models.StockRecord {
	if e := c.current.Load(); e != nil {
		return e.snap.Records
	}
	return nil
}

// Lookup finds a record by symbol (case-insensitive).
func (c *Cache) Lookup(symbol string) (*models.StockRecord, bool) {
	e := c.current.Load()
	if e == nil {
		return nil, false
	}
	i, ok := e.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil, false
	}
	return &e.snap.Records[i], true
}

// PublishedAt returns when the live snapshot was published.
func (c *Cache) PublishedAt() time.Time {
	if e := c.current.Load(); e != nil {
		return e.snap.PublishedAt
	}
	return time.Time{}
}

// Ready reports whether any snapshot has been published.
func (c *Cache) Ready() bool {
	return c.current.Load() != nil
}
