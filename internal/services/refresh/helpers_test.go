package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
)

var errNoData = errors.New("no data")

type stubMarket struct {
	getBars  func(ctx context.Context, symbol, rng string) ([]models.Bar, error)
	getQuote func(ctx context.Context, symbol string) (*models.Quote, error)
}

func (s *stubMarket) GetBars(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	if s.getBars == nil {
		return nil, errNoData
	}
	return s.getBars(ctx, symbol, rng)
}

func (s *stubMarket) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.getQuote == nil {
		return nil, errNoData
	}
	return s.getQuote(ctx, symbol)
}

// weekendNow is a Saturday morning, so the pipeline resolves a HISTORICAL
// view and never asks for quotes.
func weekendNow(cal *calendar.Calendar) time.Time {
	return time.Date(2025, time.January, 11, 10, 0, 0, 0, cal.Location())
}

func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New()
	require.NoError(t, err)
	return cal
}

// barsEnding returns one bar per trading day ending on end, oldest first.
func barsEnding(cal *calendar.Calendar, end time.Time, closes []float64) []models.Bar {
	dates := make([]time.Time, 0, len(closes))
	d := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, cal.Location())
	for len(dates) < len(closes) {
		if cal.IsTradingDay(d) {
			dates = append(dates, d)
		}
		d = d.AddDate(0, 0, -1)
	}
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Date:   dates[len(dates)-1-i],
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100000,
		}
	}
	return bars
}

// geometric returns n closes growing by pct percent per bar.
func geometric(n int, start, pct float64) []float64 {
	out := make([]float64, n)
	v := start
	for i := range out {
		out[i] = v
		v *= 1 + pct/100
	}
	return out
}

func universe(symbols ...string) []models.UniverseEntry {
	out := make([]models.UniverseEntry, len(symbols))
	for i, s := range symbols {
		out[i] = models.UniverseEntry{Symbol: s, Name: s + " Ltd", Sector: "Banking"}
	}
	return out
}

func testConfig() common.RefreshConfig {
	return common.RefreshConfig{
		Interval:     "1h",
		MaxSymbols:   25,
		BatchSize:    10,
		Concurrency:  1,
		HistoryRange: "6mo",
		FallbackSize: 50,
	}
}

func newTestPipeline(t *testing.T, market interfaces.MarketDataClient, store interfaces.SnapshotStore, u []models.UniverseEntry, cfg common.RefreshConfig) (*Pipeline, *cache.Cache) {
	t.Helper()
	cal := testCalendar(t)
	c := cache.New()
	p := NewPipeline(market, cal, c, store, u, cfg, common.NewSilentLogger(),
		WithClock(func() time.Time { return weekendNow(cal) }),
		WithRandSeed(7),
	)
	return p, c
}
