package stocks

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/models"
	"github.com/bobmcallan/fnoscan/internal/signals"
)

const (
	// ChartPointLimit caps the chart points attached to a record.
	ChartPointLimit = 50

	constantPriceEpsilon = 1e-4
	breakoutFactor       = 0.99
)

// ErrNoPriceData is returned when neither bars nor a usable quote are available.
var ErrNoPriceData = errors.New("no price data")

// BuildOptions controls optional parts of a record build.
type BuildOptions struct {
	IncludeChart bool
	Now          time.Time // zero means the calendar clock
}

// Builder assembles validated stock records from history and a quote.
type Builder struct {
	calendar *calendar.Calendar
	computer *signals.Computer
	validate *validator.Validate
}

// NewBuilder creates a builder bound to an exchange calendar.
func NewBuilder(cal *calendar.Calendar) *Builder {
	return &Builder{
		calendar: cal,
		computer: signals.NewComputer(),
		validate: validator.New(),
	}
}

// Build produces one record. bars must be oldest first; quote may be nil.
// Any failure returns a nil record and the caller drops the symbol.
func (b *Builder) Build(entry models.UniverseEntry, bars []models.Bar, quote *models.Quote, opts BuildOptions) (*models.StockRecord, error) {
	symbol := strings.ToUpper(strings.TrimSpace(entry.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty symbol")
	}
	if len(bars) == 0 && (quote == nil || quote.LastPrice <= 0) {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoPriceData)
	}

	now := opts.Now
	if now.IsZero() {
		now = b.calendar.Now()
	}
	view := b.calendar.ResolveView(now)

	q := signals.EffectiveQuote(bars, quote)
	if q.LastPrice <= 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoPriceData)
	}

	changes := newChangeIndex(b.calendar, bars)
	p1, _, _ := changes.on(view.Dates.P1)
	p2, _, _ := changes.on(view.Dates.P2)
	p3, _, _ := changes.on(view.Dates.P3)
	avg3 := signals.ThreeDayAverage(p1, p2, p3)

	changeAbs := q.LastPrice - q.PreviousClose
	var changePct float64
	if q.PreviousClose > 0 {
		changePct = changeAbs / q.PreviousClose * 100
	}
	if view.ViewMode == models.ViewHistorical {
		// Outside the session the quote may still describe the previous day.
		if pct, abs, ok := changes.on(view.Dates.Current); ok {
			changePct = pct
			changeAbs = abs
		}
	}

	result := b.computer.Compute(bars, q)

	var avgVolume float64
	if q.AverageVolume != nil {
		avgVolume = *q.AverageVolume
	}
	highVolume := signals.IsHighVolume(q.Volume, avgVolume)

	day1 := signals.StrengthLabel(p1)
	day2 := signals.StrengthLabel(p2)
	day3 := signals.StrengthLabel(p3)

	name := entry.Name
	if name == "" {
		name = symbol
	}

	rec := &models.StockRecord{
		Symbol:           symbol,
		Name:             name,
		Sector:           entry.Sector,
		CurrentPrice:     round2(q.LastPrice),
		PreviousClose:    round2(q.PreviousClose),
		CurrentChangeAbs: round2(changeAbs),
		CurrentChange:    round2(changePct),
		DayHigh:          round2(q.DayHigh),
		DayLow:           round2(q.DayLow),
		Volume:           q.Volume,
		MarketCap:        q.MarketCap,
		LastUpdated:      now,
		History: models.History{
			PDay1:       p1,
			PDay2:       p2,
			PDay3:       p3,
			Avg3Day:     avg3,
			Volatility3: signals.ThreeDayVolatility(p1, p2, p3),
		},
		Indicators: result.Indicators,
		Flags: models.Flags{
			IsConstantPrice:     math.Abs(avg3) < constantPriceEpsilon,
			IsGainerToday:       changePct > 0,
			IsLoserToday:        changePct < 0,
			IsHighVolume:        highVolume,
			IsBreakoutCandidate: highVolume && q.LastPrice > q.DayHigh*breakoutFactor,
		},
		CurrentStrength: signals.StrengthLabel(changePct),
		Day1Strength:    day1,
		Day2Strength:    day2,
		Day3Strength:    day3,
		Avg3DayStrength: signals.AvgStrengthLabel(day1, day2, day3),
		Derived:         signals.Badges(result.Indicators.MACDStatus, result.Indicators.RSIZone),
	}

	if opts.IncludeChart {
		rec.ChartData = signals.ChartPoints(bars, result.Series, ChartPointLimit)
	}

	if err := b.validate.Struct(rec); err != nil {
		return nil, fmt.Errorf("%s: invalid record: %w", symbol, err)
	}
	return rec, nil
}

// changeIndex looks up day-over-day changes by exchange date.
type changeIndex struct {
	cal  *calendar.Calendar
	bars []models.Bar
	pos  map[string]int
}

func newChangeIndex(cal *calendar.Calendar, bars []models.Bar) changeIndex {
	pos := make(map[string]int, len(bars))
	for i, bar := range bars {
		pos[cal.DateKey(bar.Date)] = i
	}
	return changeIndex{cal: cal, bars: bars, pos: pos}
}

// on returns the percentage and absolute change of the bar dated d against
// the bar before it. Missing dates, missing predecessors and zero closes
// yield zeros and false.
func (ci changeIndex) on(d time.Time) (pct, abs float64, ok bool) {
	if d.IsZero() {
		return 0, 0, false
	}
	i, found := ci.pos[ci.cal.DateKey(d)]
	if !found || i == 0 {
		return 0, 0, false
	}
	prev := ci.bars[i-1].Close
	if prev == 0 {
		return 0, 0, false
	}
	abs = ci.bars[i].Close - prev
	return abs / prev * 100, abs, true
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func round2Ptr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := round2(*p)
	return &v
}
