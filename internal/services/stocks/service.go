// Package stocks builds stock records and answers queries over the live snapshot.
package stocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
)

// ErrNotFound is returned when a symbol is neither cached nor buildable.
var ErrNotFound = errors.New("stock not found")

// DefaultTopLimit is used by TopBy when limit is not positive.
const DefaultTopLimit = 20

// DefaultIndices are the headline indices reported by Indices.
var DefaultIndices = []models.IndexQuote{
	{Symbol: "^NSEI", Name: "NIFTY 50"},
	{Symbol: "^BSESN", Name: "SENSEX"},
	{Symbol: "^NSEBANK", Name: "BANK NIFTY"},
}

// Service implements interfaces.StockService over the snapshot cache.
type Service struct {
	cache        *cache.Cache
	calendar     *calendar.Calendar
	market       interfaces.MarketDataClient
	builder      *Builder
	enricher     *Enricher
	universe     map[string]models.UniverseEntry
	historyRange string
	now          func() time.Time
	logger       *common.Logger
}

// Option configures a Service
type Option func(*Service)

// WithUniverse supplies names and sectors for symbols built on demand.
func WithUniverse(entries []models.UniverseEntry) Option {
	return func(s *Service) {
		s.universe = make(map[string]models.UniverseEntry, len(entries))
		for _, e := range entries {
			s.universe[strings.ToUpper(e.Symbol)] = e
		}
	}
}

// WithHistoryRange sets the bar range used for on-demand builds.
func WithHistoryRange(rng string) Option {
	return func(s *Service) {
		if rng != "" {
			s.historyRange = rng
		}
	}
}

// WithClock overrides the clock (for tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a stock query service. market and fundamentals may be
// nil, in which case detail views are served from the cache only.
func NewService(c *cache.Cache, cal *calendar.Calendar, market interfaces.MarketDataClient, fundamentals interfaces.FundamentalsClient, logger *common.Logger, opts ...Option) *Service {
	s := &Service{
		cache:        c,
		calendar:     cal,
		market:       market,
		builder:      NewBuilder(cal),
		enricher:     NewEnricher(market, fundamentals, logger),
		historyRange: "6mo",
		now:          cal.Now,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the records matching q.
func (s *Service) List(ctx context.Context, q models.StockQuery) []models.StockRecord {
	return Filter(s.cache.Records(), q)
}

// Get returns a copy of one cached record.
func (s *Service) Get(ctx context.Context, symbol string) (*models.StockRecord, error) {
	rec, ok := s.cache.Lookup(symbol)
	if !ok {
		return nil, fmt.Errorf("%s: %w", strings.ToUpper(symbol), ErrNotFound)
	}
	c := rec.Clone()
	return &c, nil
}

// Detail returns an enriched record. Symbols missing from the cache are
// built live when a market data client is configured.
func (s *Service) Detail(ctx context.Context, symbol string) (*models.StockRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol: %w", ErrNotFound)
	}

	rec, ok := s.cache.Lookup(symbol)
	if !ok {
		built, err := s.buildLive(ctx, symbol)
		if err != nil {
			s.logger.Debug().Err(err).Str("symbol", symbol).Msg("On-demand build failed")
			return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
		}
		rec = built
	}

	enriched := s.enricher.Enrich(ctx, rec)
	return &enriched, nil
}

func (s *Service) buildLive(ctx context.Context, symbol string) (*models.StockRecord, error) {
	if s.market == nil {
		return nil, errors.New("no market data client")
	}
	bars, err := s.market.GetBars(ctx, symbol, s.historyRange)
	if err != nil {
		return nil, err
	}
	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		// History alone is enough to build
		quote = nil
	}

	entry, ok := s.universe[symbol]
	if !ok {
		entry = models.UniverseEntry{Symbol: symbol}
	}
	return s.builder.Build(entry, bars, quote, BuildOptions{IncludeChart: true, Now: s.now()})
}

// TopBy returns the first limit records ordered by field.
func (s *Service) TopBy(ctx context.Context, field string, limit int, desc bool) []models.StockRecord {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	records := slices.Clone(s.cache.Records())
	Sort(records, field, desc)
	if len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Sectors aggregates the live snapshot by sector.
func (s *Service) Sectors(ctx context.Context) models.SectorHeatmap {
	return models.SectorHeatmap{
		Timestamp: s.now().UTC(),
		Sectors:   AggregateSectors(s.cache.Records()),
	}
}

// MarketStatus reports the calendar state for now.
func (s *Service) MarketStatus(ctx context.Context) models.MarketStatus {
	return s.calendar.Status(s.now())
}

// ChartPNG renders the detail chart for symbol.
func (s *Service) ChartPNG(ctx context.Context, symbol string, width int) ([]byte, error) {
	rec, err := s.Detail(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return RenderPriceChart(rec.Symbol, rec.ChartData, width)
}

// Indices returns the headline index quotes. A failed index yields a row
// with Available false.
func (s *Service) Indices(ctx context.Context) []models.IndexQuote {
	out := make([]models.IndexQuote, 0, len(DefaultIndices))
	for _, idx := range DefaultIndices {
		row := idx
		if s.market == nil {
			out = append(out, row)
			continue
		}

		q, err := s.market.GetQuote(ctx, idx.Symbol)
		if err != nil || q == nil || q.LastPrice <= 0 {
			if err != nil {
				s.logger.Warn().Err(err).Str("index", idx.Symbol).Msg("Index quote unavailable")
			}
			out = append(out, row)
			continue
		}

		row.Price = round2(q.LastPrice)
		row.Available = true
		if q.PreviousClose > 0 {
			change := q.LastPrice - q.PreviousClose
			row.Change = round2(change)
			row.ChangePct = round2(change / q.PreviousClose * 100)
		}
		out = append(out, row)
	}
	return out
}

var _ interfaces.StockService = (*Service)(nil)
