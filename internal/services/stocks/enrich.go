package stocks

import (
	"context"
	"math"

	"github.com/bobmcallan/fnoscan/internal/common"
	"github.com/bobmcallan/fnoscan/internal/interfaces"
	"github.com/bobmcallan/fnoscan/internal/models"
	"github.com/bobmcallan/fnoscan/internal/signals"
)

// LongHistoryRange is the bar range fetched for returns and detail charts.
const LongHistoryRange = "max"

const (
	yearBars = 252
	dma50    = 50
	dma200   = 200
)

// ReturnHorizons are the trailing return windows in trading days.
var ReturnHorizons = []struct {
	Key  string
	Bars int
}{
	{"1M", 21},
	{"3M", 63},
	{"1Y", yearBars},
	{"3Y", yearBars * 3},
	{"5Y", yearBars * 5},
}

// ReturnAll is the since-first-bar return key.
const ReturnAll = "All"

// Enricher adds fundamentals, trailing returns and chart points to a record
// for detail views.
type Enricher struct {
	market       interfaces.MarketDataClient
	fundamentals interfaces.FundamentalsClient
	computer     *signals.Computer
	logger       *common.Logger
}

// NewEnricher creates an enricher. fundamentals may be nil.
func NewEnricher(market interfaces.MarketDataClient, fundamentals interfaces.FundamentalsClient, logger *common.Logger) *Enricher {
	return &Enricher{
		market:       market,
		fundamentals: fundamentals,
		computer:     signals.NewComputer(),
		logger:       logger,
	}
}

// Enrich returns an enriched copy of rec. Each part is best effort: a failed
// upstream call leaves its fields unset and is logged, never returned.
func (e *Enricher) Enrich(ctx context.Context, rec *models.StockRecord) models.StockRecord {
	out := rec.Clone()

	if e.fundamentals != nil {
		f, err := e.fundamentals.GetFundamentals(ctx, out.Symbol)
		if err != nil {
			e.logger.Warn().Err(err).Str("symbol", out.Symbol).Msg("Fundamentals unavailable")
		} else if f != nil {
			applyFundamentals(&out, f)
		}
	}

	if e.market == nil {
		return out
	}
	bars, err := e.market.GetBars(ctx, out.Symbol, LongHistoryRange)
	if err != nil {
		e.logger.Warn().Err(err).Str("symbol", out.Symbol).Msg("Long history unavailable")
		return out
	}
	if len(bars) == 0 {
		return out
	}

	out.Returns = Returns(bars)
	applyHistoryFallbacks(&out, bars)

	if len(out.ChartData) == 0 {
		res := e.computer.Compute(bars, signals.EffectiveQuote(bars, nil))
		out.ChartData = signals.ChartPoints(bars, res.Series, ChartPointLimit)
	}
	return out
}

// Returns computes trailing percentage returns from bars (oldest first).
// A horizon is nil when the history is too short or the base close is not
// positive.
func Returns(bars []models.Bar) map[string]*float64 {
	out := make(map[string]*float64, len(ReturnHorizons)+1)
	for _, h := range ReturnHorizons {
		out[h.Key] = nil
	}
	out[ReturnAll] = nil
	if len(bars) == 0 {
		return out
	}

	current := bars[len(bars)-1].Close
	for _, h := range ReturnHorizons {
		if len(bars) > h.Bars {
			out[h.Key] = pctReturn(current, bars[len(bars)-h.Bars].Close)
		}
	}
	out[ReturnAll] = pctReturn(current, bars[0].Close)
	return out
}

func pctReturn(current, base float64) *float64 {
	if base <= 0 {
		return nil
	}
	v := round2((current - base) / base * 100)
	return &v
}

func applyFundamentals(rec *models.StockRecord, f *models.Fundamentals) {
	if rec.Name == "" || rec.Name == rec.Symbol {
		if f.Name != "" {
			rec.Name = f.Name
		}
	}
	if rec.Sector == "" {
		rec.Sector = f.Sector
	}
	if rec.MarketCap == nil {
		rec.MarketCap = f.MarketCap
	}
	rec.PERatio = round2Ptr(f.PE)
	rec.EPS = round2Ptr(f.EPS)
	rec.BookValue = round2Ptr(f.BookValue)
	rec.PBRatio = round2Ptr(f.PB)
	rec.DividendYield = percentPtr(f.DividendYield)
	rec.ROE = percentPtr(f.ROE)
	// Return on assets stands in for ROCE, which no provider reports.
	rec.ROCE = percentPtr(f.ROA)
	rec.YearHigh = round2Ptr(f.YearHigh)
	rec.YearLow = round2Ptr(f.YearLow)
	rec.DMA50 = round2Ptr(f.DMA50)
	rec.DMA200 = round2Ptr(f.DMA200)
}

// applyHistoryFallbacks fills the 52-week range and moving averages from
// bars when fundamentals did not supply them.
func applyHistoryFallbacks(rec *models.StockRecord, bars []models.Bar) {
	if rec.YearHigh == nil || rec.YearLow == nil {
		recent := bars
		if len(recent) > yearBars {
			recent = recent[len(recent)-yearBars:]
		}
		hi, lo := math.Inf(-1), math.Inf(1)
		for _, b := range recent {
			hi = math.Max(hi, b.High)
			lo = math.Min(lo, b.Low)
		}
		if rec.YearHigh == nil {
			rec.YearHigh = round2Ptr(signals.Ptr(hi))
		}
		if rec.YearLow == nil {
			rec.YearLow = round2Ptr(signals.Ptr(lo))
		}
	}

	closes := signals.Closes(bars)
	if rec.DMA50 == nil {
		rec.DMA50 = round2Ptr(signals.Ptr(signals.Last(signals.SMA(closes, dma50))))
	}
	if rec.DMA200 == nil {
		rec.DMA200 = round2Ptr(signals.Ptr(signals.Last(signals.SMA(closes, dma200))))
	}
}

func percentPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := round2(*p * 100)
	return &v
}
