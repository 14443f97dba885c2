// Package refresh drives the background fetch, build, rank and publish cycle.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime/debug"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
	"github.com/bobmcallan/fnoscan/internal/services/stocks"
)

// ErrCycleInProgress is returned by RunOnce when another cycle is running.
var ErrCycleInProgress = errors.New("refresh cycle already in progress")

// CycleStats summarises the most recent completed cycle.
type CycleStats struct {
	CycleID  string        `json:"cycle_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Symbols  int           `json:"symbols"`
	Built    int           `json:"built"`
	Failed   int           `json:"failed"`
	Degraded bool          `json:"degraded"`
}

// Pipeline refreshes the snapshot from the market data client.
type Pipeline struct {
	market   interfaces.MarketDataClient
	builder  *stocks.Builder
	calendar *calendar.Calendar
	cache    *cache.Cache
	store    interfaces.SnapshotStore
	universe []models.UniverseEntry
	config   common.RefreshConfig
	logger   *common.Logger
	now      func() time.Time
	rng      *rand.Rand
	validate *validator.Validate

	running atomic.Bool
	last    atomic.Pointer[CycleStats]

	mu        sync.Mutex
	listeners []func(models.SnapshotEvent)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the pipeline clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRandSeed makes synthetic fallback records reproducible.
func WithRandSeed(seed uint64) Option {
	return func(p *Pipeline) { p.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// NewPipeline creates a refresh pipeline. store may be nil, in which case
// snapshots are not persisted.
func NewPipeline(
	market interfaces.MarketDataClient,
	cal *calendar.Calendar,
	c *cache.Cache,
	store interfaces.SnapshotStore,
	universe []models.UniverseEntry,
	config common.RefreshConfig,
	logger *common.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		market:   market,
		builder:  stocks.NewBuilder(cal),
		calendar: cal,
		cache:    c,
		store:    store,
		universe: universe,
		config:   config,
		logger:   logger,
		now:      cal.Now,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnPublish registers fn to receive an event after every publish.
func (p *Pipeline) OnPublish(fn func(models.SnapshotEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// LastCycle returns stats for the most recent completed cycle, or nil.
func (p *Pipeline) LastCycle() *CycleStats {
	return p.last.Load()
}

// Seed publishes the persisted snapshot so queries have data before the
// first cycle completes. It does nothing when a snapshot is already live.
// A snapshot holding an invalid record or a broken rank sequence is
// discarded and the cache stays empty until the first cycle.
func (p *Pipeline) Seed(ctx context.Context) error {
	if p.store == nil || p.cache.Ready() {
		return nil
	}

	snap, err := p.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted snapshot: %w", err)
	}
	if snap == nil || len(snap.Records) == 0 {
		p.logger.Info().Msg("Seed: no persisted snapshot")
		return nil
	}

	if err := p.checkSnapshot(snap); err != nil {
		p.logger.Warn().
			Err(err).
			Str("cycle_id", snap.CycleID).
			Int("records", len(snap.Records)).
			Msg("Seed: persisted snapshot rejected, starting empty")
		return nil
	}

	snap.Source = models.SourcePersisted
	p.cache.Publish(snap)

	p.logger.Info().
		Int("records", len(snap.Records)).
		Str("cycle_id", snap.CycleID).
		Str("published_at", snap.PublishedAt.Format(time.RFC3339)).
		Msg("Seed: persisted snapshot published")
	return nil
}

// checkSnapshot applies the admission rules of a freshly built cycle: every
// record passes struct validation and ranks are exactly 1..N.
func (p *Pipeline) checkSnapshot(snap *models.Snapshot) error {
	seen := make([]bool, len(snap.Records)+1)
	for i := range snap.Records {
		rec := &snap.Records[i]
		if err := p.validate.Struct(rec); err != nil {
			return fmt.Errorf("record %d (%s) invalid: %w", i, rec.Symbol, err)
		}
		if rec.Rank < 1 || rec.Rank > len(snap.Records) {
			return fmt.Errorf("record %s has rank %d outside 1..%d", rec.Symbol, rec.Rank, len(snap.Records))
		}
		if seen[rec.Rank] {
			return fmt.Errorf("rank %d assigned twice", rec.Rank)
		}
		seen[rec.Rank] = true
	}
	return nil
}

// Run executes a cycle immediately and then one per interval until ctx is
// cancelled. A failing or panicking cycle never stops the loop.
func (p *Pipeline) Run(ctx context.Context) {
	interval := p.config.GetInterval()
	p.logger.Info().Dur("interval", interval).Msg("Refresh loop: started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Refresh loop: stopped")
			return
		case <-timer.C:
			p.runCycle(ctx)
			timer.Reset(interval)
		}
	}
}

func (p *Pipeline) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Str("goroutine", "refresh-cycle").
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in refresh cycle")
		}
	}()

	if _, err := p.RunOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn().Err(err).Msg("Refresh cycle failed")
	}
}

// RunOnce executes one full cycle and returns the published snapshot.
func (p *Pipeline) RunOnce(ctx context.Context) (*models.Snapshot, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer p.running.Store(false)

	cycleID := uuid.New().String()
	logger := p.logger.WithCorrelationID(cycleID)
	start := time.Now()
	now := p.now()
	view := p.calendar.ResolveView(now)

	symbols := p.universe
	if limit := p.config.MaxSymbols; limit > 0 && len(symbols) > limit {
		symbols = symbols[:limit]
	}

	logger.Info().
		Int("symbols", len(symbols)).
		Str("view_mode", string(view.ViewMode)).
		Str("status", string(view.Status)).
		Msg("Refresh cycle: started")

	batchSize := max(p.config.BatchSize, 1)
	records := make([]models.StockRecord, 0, len(symbols))
	failed := 0

	for from := 0; from < len(symbols); from += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := symbols[from:min(from+batchSize, len(symbols))]

		results := p.processBatch(ctx, logger, batch, view, now)
		for _, r := range results {
			if r == nil {
				failed++
				continue
			}
			records = append(records, *r)
		}
		clear(results)

		logger.Debug().
			Int("batch_start", from).
			Int("batch_size", len(batch)).
			Int("built", len(records)).
			Msg("Refresh cycle: batch complete")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := models.SourceLive
	degraded := false
	if len(records) == 0 {
		records = SyntheticRecords(symbols, p.config.FallbackSize, now, p.rng)
		source = models.SourceFallback
		degraded = true
		logger.Warn().
			Str("mode", "degraded").
			Int("failed", failed).
			Int("records", len(records)).
			Msg("Refresh cycle: no live records, publishing synthetic fallback")
	}

	Rank(records)

	snap := &models.Snapshot{
		Records:     records,
		PublishedAt: p.now(),
		Degraded:    degraded,
		CycleID:     cycleID,
		Source:      source,
	}
	p.cache.Publish(snap)

	p.notify(logger, models.SnapshotEvent{
		Type:        models.EventSnapshotPublished,
		CycleID:     cycleID,
		PublishedAt: snap.PublishedAt,
		Records:     len(records),
		Failed:      failed,
		Degraded:    degraded,
		Source:      source,
	})

	if p.store != nil {
		if err := p.store.Save(ctx, snap); err != nil {
			logger.Warn().Err(err).Msg("Refresh cycle: failed to persist snapshot")
		}
	}

	elapsed := time.Since(start)
	p.last.Store(&CycleStats{
		CycleID:  cycleID,
		Started:  start,
		Duration: elapsed,
		Symbols:  len(symbols),
		Built:    len(records),
		Failed:   failed,
		Degraded: degraded,
	})

	logger.Info().
		Int("records", len(records)).
		Int("failed", failed).
		Bool("degraded", degraded).
		Dur("elapsed", elapsed).
		Msg("Refresh cycle: complete")

	return snap, nil
}

// processBatch builds every symbol of a batch with at most
// config.Concurrency fetches in flight. Failed symbols leave a nil slot.
func (p *Pipeline) processBatch(ctx context.Context, logger *common.Logger, batch []models.UniverseEntry, view models.MarketView, now time.Time) []*models.StockRecord {
	results := make([]*models.StockRecord, len(batch))
	sem := make(chan struct{}, max(p.config.Concurrency, 1))
	var wg sync.WaitGroup

	for i, entry := range batch {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return results
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					results[i] = nil
					logger.Error().
						Str("goroutine", "refresh-"+entry.Symbol).
						Str("panic", fmt.Sprintf("%v", r)).
						Str("stack", string(debug.Stack())).
						Msg("Recovered from panic while building symbol")
				}
			}()

			rec, err := p.buildSymbol(ctx, entry, view, now)
			if err != nil {
				logger.Debug().Err(err).Str("symbol", entry.Symbol).Msg("Symbol skipped")
				return
			}
			results[i] = rec
		}()
	}

	wg.Wait()
	return results
}

func (p *Pipeline) buildSymbol(ctx context.Context, entry models.UniverseEntry, view models.MarketView, now time.Time) (*models.StockRecord, error) {
	bars, err := p.market.GetBars(ctx, entry.Symbol, p.config.HistoryRange)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", entry.Symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", entry.Symbol, stocks.ErrNoPriceData)
	}

	var quote *models.Quote
	if view.ViewMode == models.ViewLive {
		q, err := p.market.GetQuote(ctx, entry.Symbol)
		if err != nil {
			p.logger.Trace().Err(err).Str("symbol", entry.Symbol).Msg("Quote unavailable, using last bar")
		} else {
			quote = q
		}
	}

	return p.builder.Build(entry, bars, quote, stocks.BuildOptions{Now: now})
}

func (p *Pipeline) notify(logger *common.Logger, ev models.SnapshotEvent) {
	p.mu.Lock()
	listeners := slices.Clone(p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Str("goroutine", "publish-listener").
						Str("panic", fmt.Sprintf("%v", r)).
						Msg("Recovered from panic in publish listener")
				}
			}()
			fn(ev)
		}()
	}
}

// Rank orders records by ascending absolute 3-day average and assigns
// rank = position + 1. Ties keep their input order.
func Rank(records []models.StockRecord) {
	slices.SortStableFunc(records, func(a, b models.StockRecord) int {
		x, y := math.Abs(a.History.Avg3Day), math.Abs(b.History.Avg3Day)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	for i := range records {
		records[i].Rank = i + 1
	}
}

var _ interfaces.RefreshService = (*Pipeline)(nil)
