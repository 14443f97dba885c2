package app

import (
	"context"
	"os"
	"time"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
)

// warmCache publishes the last persisted snapshot so the API can answer
// before the first refresh cycle completes.
func warmCache(ctx context.Context, refresh interfaces.RefreshService, c *cache.Cache, logger *common.Logger) {
	if os.Getenv("FNOSCAN_WARM_CACHE") == "off" {
		logger.Info().Msg("Warm cache: disabled via FNOSCAN_WARM_CACHE=off")
		return
	}

	start := time.Now()
	if err := refresh.Seed(ctx); err != nil {
		logger.Warn().Err(err).Msg("Warm cache: persisted snapshot unavailable, starting empty")
		return
	}

	snap := c.Snapshot()
	if snap == nil {
		logger.Info().Msg("Warm cache: nothing to seed")
		return
	}

	logger.Info().
		Int("records", snap.Len()).
		Str("source", snap.Source).
		Dur("age", snap.Age(time.Now())).
		Dur("elapsed", time.Since(start)).
		Msg("Warm cache: complete")
}
