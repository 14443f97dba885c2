package stocks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fnoscan/internal/models"
)

func TestBuild_LiveSession(t *testing.T) {
	cal := testCalendar(t)
	now := ist(t, cal, 2025, time.January, 8, 11, 0) // Wednesday, session open
	closes := trend(60, 100, 1)
	bars := tradingBars(cal, now, closes)

	quote := &models.Quote{
		LastPrice:     160,
		PreviousClose: 150,
		DayHigh:       161,
		DayLow:        149,
		Volume:        500000,
		AverageVolume: models.Float64(100000),
		MarketCap:     models.Float64(5e11),
	}

	b := NewBuilder(cal)
	r, err := b.Build(models.UniverseEntry{Symbol: "reliance", Name: "Reliance Industries", Sector: "Energy"}, bars, quote, BuildOptions{Now: now})
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE", r.Symbol)
	assert.Equal(t, "Reliance Industries", r.Name)
	assert.Equal(t, "Energy", r.Sector)
	assert.Equal(t, 160.0, r.CurrentPrice)
	assert.Equal(t, 150.0, r.PreviousClose)
	assert.Equal(t, 10.0, r.CurrentChangeAbs)
	assert.Equal(t, 6.67, r.CurrentChange)
	assert.Equal(t, 0, r.Rank)
	assert.Equal(t, now, r.LastUpdated)
	require.NotNil(t, r.MarketCap)

	// live: P1..P3 are Jan 7, Jan 6 and Jan 3, the last three bars before today
	n := len(closes)
	assert.InDelta(t, pct(closes[n-3], closes[n-2]), r.History.PDay1, 1e-9)
	assert.InDelta(t, pct(closes[n-4], closes[n-3]), r.History.PDay2, 1e-9)
	assert.InDelta(t, pct(closes[n-5], closes[n-4]), r.History.PDay3, 1e-9)
	assert.Equal(t, (r.History.PDay1+r.History.PDay2+r.History.PDay3)/3, r.History.Avg3Day)
	assert.Greater(t, r.History.Volatility3, 0.0)

	assert.Equal(t, models.StrengthBuyers, r.CurrentStrength)
	assert.Equal(t, models.StrengthBuyers, r.Day1Strength)
	assert.Equal(t, models.StrengthBuyers, r.Avg3DayStrength)

	assert.Equal(t, models.TrendBullish, r.Indicators.Trend)
	assert.Equal(t, models.RSIOverbought, r.Indicators.RSIZone)
	// uptrend 65 plus 5 for high volume on an up day
	assert.Equal(t, 70, r.Indicators.BuyerScore)
	assert.Equal(t, models.StrengthBuyers, r.Indicators.StrengthLabel)
	assert.Equal(t, "Overbought (>70)", r.Derived.RSILabel)

	assert.True(t, r.Flags.IsGainerToday)
	assert.False(t, r.Flags.IsLoserToday)
	assert.True(t, r.Flags.IsHighVolume)
	assert.True(t, r.Flags.IsBreakoutCandidate)
	assert.False(t, r.Flags.IsConstantPrice)

	assert.Nil(t, r.ChartData, "chart points are only built on request")
}

func TestBuild_IncludeChart(t *testing.T) {
	cal := testCalendar(t)
	now := ist(t, cal, 2025, time.January, 8, 11, 0)
	bars := tradingBars(cal, now, trend(80, 100, 1))

	r, err := NewBuilder(cal).Build(models.UniverseEntry{Symbol: "TCS"}, bars, nil, BuildOptions{Now: now, IncludeChart: true})
	require.NoError(t, err)
	require.Len(t, r.ChartData, ChartPointLimit)
	assert.Equal(t, "2025-01-08", r.ChartData[ChartPointLimit-1].Date)
	assert.Equal(t, "TCS", r.Name, "name defaults to the symbol")
}

func TestBuild_HistoricalRecomputesChange(t *testing.T) {
	cal := testCalendar(t)
	// Wednesday before the open: current is Tue Jan 7, P-days are Jan 6, 3, 2
	now := ist(t, cal, 2025, time.January, 8, 8, 0)
	closes := trend(60, 200, -1)
	bars := tradingBars(cal, time.Date(2025, 1, 7, 0, 0, 0, 0, cal.Location()), closes)

	// a stale quote that disagrees with the bars
	quote := &models.Quote{LastPrice: 141, PreviousClose: 100}

	r, err := NewBuilder(cal).Build(models.UniverseEntry{Symbol: "INFY"}, bars, quote, BuildOptions{Now: now})
	require.NoError(t, err)

	n := len(closes)
	assert.Equal(t, round2(pct(closes[n-2], closes[n-1])), r.CurrentChange)
	assert.Equal(t, round2(closes[n-1]-closes[n-2]), r.CurrentChangeAbs)
	assert.Equal(t, -1.0, r.CurrentChangeAbs)
	assert.True(t, r.Flags.IsLoserToday)
	assert.Equal(t, models.StrengthSellers, r.CurrentStrength)

	assert.InDelta(t, pct(closes[n-3], closes[n-2]), r.History.PDay1, 1e-9)
	assert.InDelta(t, pct(closes[n-5], closes[n-4]), r.History.PDay3, 1e-9)
}

func TestBuild_MissingPDaysFallBackToZero(t *testing.T) {
	cal := testCalendar(t)
	now := ist(t, cal, 2025, time.January, 8, 11, 0)
	// history stops on Fri Jan 3, so Jan 7 and Jan 6 are absent
	closes := trend(30, 100, 2)
	bars := tradingBars(cal, time.Date(2025, 1, 3, 0, 0, 0, 0, cal.Location()), closes)

	r, err := NewBuilder(cal).Build(models.UniverseEntry{Symbol: "SBIN"}, bars, nil, BuildOptions{Now: now})
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.History.PDay1)
	assert.Equal(t, 0.0, r.History.PDay2)
	assert.InDelta(t, pct(closes[28], closes[29]), r.History.PDay3, 1e-9)
	assert.Equal(t, models.StrengthBalanced, r.Day1Strength)
	assert.Equal(t, models.StrengthBuyers, r.Day3Strength)
	// scores 0, 0, +1 average to 0.33
	assert.Equal(t, models.StrengthBuyers, r.Avg3DayStrength)
}

func TestBuild_ConstantPrice(t *testing.T) {
	cal := testCalendar(t)
	now := ist(t, cal, 2025, time.January, 8, 11, 0)
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 500
	}
	bars := tradingBars(cal, now, closes)

	r, err := NewBuilder(cal).Build(models.UniverseEntry{Symbol: "ITC"}, bars, nil, BuildOptions{Now: now})
	require.NoError(t, err)
	assert.True(t, r.Flags.IsConstantPrice)
	assert.False(t, r.Flags.IsGainerToday)
	assert.False(t, r.Flags.IsLoserToday)
	assert.Nil(t, r.Indicators.RSIValue, "no movement leaves RSI undefined")
	assert.Equal(t, models.RSINeutral, r.Indicators.RSIZone)
}

func TestBuild_QuoteOnly(t *testing.T) {
	cal := testCalendar(t)
	now := ist(t, cal, 2025, time.January, 8, 11, 0)

	r, err := NewBuilder(cal).Build(models.UniverseEntry{Symbol: "HDFCBANK"}, nil,
		&models.Quote{LastPrice: 1650.456, PreviousClose: 1640, DayHigh: 1660, DayLow: 1630, Volume: 1000}, BuildOptions{Now: now})
	require.NoError(t, err)
	assert.Equal(t, 1650.46, r.CurrentPrice)
	assert.Equal(t, 0.0, r.History.Avg3Day)
	assert.Nil(t, r.Indicators.MACDLine)
	assert.False(t, r.Flags.IsHighVolume, "unknown average volume is never high")
}

func TestBuild_Failures(t *testing.T) {
	cal := testCalendar(t)
	now := ist(t, cal, 2025, time.January, 8, 11, 0)
	b := NewBuilder(cal)

	t.Run("no data", func(t *testing.T) {
		r, err := b.Build(models.UniverseEntry{Symbol: "X"}, nil, nil, BuildOptions{Now: now})
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrNoPriceData))
	})

	t.Run("zero quote and no bars", func(t *testing.T) {
		r, err := b.Build(models.UniverseEntry{Symbol: "X"}, nil, &models.Quote{}, BuildOptions{Now: now})
		assert.Nil(t, r)
		assert.True(t, errors.Is(err, ErrNoPriceData))
	})

	t.Run("empty symbol", func(t *testing.T) {
		r, err := b.Build(models.UniverseEntry{Symbol: "  "}, nil, &models.Quote{LastPrice: 10}, BuildOptions{Now: now})
		assert.Nil(t, r)
		assert.Error(t, err)
	})

	t.Run("validation failure", func(t *testing.T) {
		r, err := b.Build(models.UniverseEntry{Symbol: "X"}, nil,
			&models.Quote{LastPrice: 10, PreviousClose: 9, DayLow: -1}, BuildOptions{Now: now})
		assert.Nil(t, r)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid record")
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, round2(1.2345))
	assert.Equal(t, 1.24, round2(1.235))
	assert.Equal(t, -0.01, round2(-0.0133))
	assert.Equal(t, 0.0, round2(0))
	assert.Nil(t, round2Ptr(nil))
}
