package stocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fnoscan/internal/calendar"
	"github.com/bobmcallan/fnoscan/internal/models"
)

var errNotConfigured = errors.New("not configured")

// stubMarket implements the market data interfaces with function fields.
type stubMarket struct {
	getBars         func(ctx context.Context, symbol, rng string) ([]models.Bar, error)
	getQuote        func(ctx context.Context, symbol string) (*models.Quote, error)
	getFundamentals func(ctx context.Context, symbol string) (*models.Fundamentals, error)
}

func (s *stubMarket) GetBars(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	if s.getBars == nil {
		return nil, errNotConfigured
	}
	return s.getBars(ctx, symbol, rng)
}

func (s *stubMarket) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.getQuote == nil {
		return nil, errNotConfigured
	}
	return s.getQuote(ctx, symbol)
}

func (s *stubMarket) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	if s.getFundamentals == nil {
		return nil, errNotConfigured
	}
	return s.getFundamentals(ctx, symbol)
}

func testCalendar(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.New()
	require.NoError(t, err)
	return cal
}

// ist returns a time in the exchange timezone.
func ist(t *testing.T, cal *calendar.Calendar, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, cal.Location())
}

// tradingBars builds one bar per trading day ending on end (inclusive),
// oldest first, with the given closes.
func tradingBars(cal *calendar.Calendar, end time.Time, closes []float64) []models.Bar {
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

func trend(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func pct(from, to float64) float64 {
	return (to - from) / from * 100
}

// rec builds a minimal valid-looking record for query tests.
func rec(symbol, sector string, price, change float64, volume int64, rank int) models.StockRecord {
	return models.StockRecord{
		Symbol:          symbol,
		Name:            symbol + " Ltd",
		Sector:          sector,
		CurrentPrice:    price,
		CurrentChange:   change,
		Volume:          volume,
		Rank:            rank,
		CurrentStrength: models.StrengthBalanced,
		Day1Strength:    models.StrengthBalanced,
		Day2Strength:    models.StrengthBalanced,
		Day3Strength:    models.StrengthBalanced,
		Avg3DayStrength: models.StrengthBalanced,
		Indicators: models.Indicators{
			MACDStatus:    models.MACDNeutral,
			RSIZone:       models.RSINeutral,
			Trend:         models.TrendNeutral,
			StrengthLabel: models.StrengthBalanced,
		},
	}
}
