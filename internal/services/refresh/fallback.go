package refresh

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fnoscan/internal/models"
	"github.com/bobmcallan/fnoscan/internal/signals"
)

// Synthetic value ranges used when every fetch in a cycle comes back empty.
const (
	fallbackMinPrice     = 100.0
	fallbackMaxPrice     = 3000.0
	fallbackMaxChangePct = 2.5
	fallbackMinVolume    = 10_000
	fallbackMaxVolume    = 1_000_000
	fallbackMinMarketCap = 1_000.0
	fallbackMaxMarketCap = 500_000.0
)

// SyntheticRecords builds placeholder records for the first n universe
// entries so the API keeps serving a full table. Indicators and history are
// neutral; only price fields vary.
func SyntheticRecords(universe []models.UniverseEntry, n int, now time.Time, rng *rand.Rand) []models.StockRecord {
	n = min(n, len(universe))
	if n <= 0 {
		return nil
	}

	records := make([]models.StockRecord, 0, n)
	for _, entry := range universe[:n] {
		price := round2(uniform(rng, fallbackMinPrice, fallbackMaxPrice))
		change := round2(uniform(rng, -fallbackMaxChangePct, fallbackMaxChangePct))
		prevClose := round2(price / (1 + change/100))
		volume := fallbackMinVolume + rng.Int64N(fallbackMaxVolume-fallbackMinVolume)
		marketCap := round2(uniform(rng, fallbackMinMarketCap, fallbackMaxMarketCap))

		name := entry.Name
		if name == "" {
			name = entry.Symbol
		}

		records = append(records, models.StockRecord{
			Symbol:           strings.ToUpper(entry.Symbol),
			Name:             name,
			Sector:           entry.Sector,
			CurrentPrice:     price,
			PreviousClose:    prevClose,
			CurrentChangeAbs: round2(price - prevClose),
			CurrentChange:    change,
			DayHigh:          round2(price * 1.01),
			DayLow:           round2(price * 0.99),
			Volume:           volume,
			MarketCap:        &marketCap,
			LastUpdated:      now,
			Indicators: models.Indicators{
				MACDStatus:    models.MACDNeutral,
				RSIZone:       models.RSINeutral,
				Trend:         models.TrendNeutral,
				BuyerScore:    50,
				SellerScore:   50,
				StrengthLabel: models.StrengthBalanced,
			},
			Flags: models.Flags{
				IsConstantPrice: true,
				IsGainerToday:   change > 0,
				IsLoserToday:    change < 0,
			},
			CurrentStrength: signals.StrengthLabel(change),
			Day1Strength:    models.StrengthBalanced,
			Day2Strength:    models.StrengthBalanced,
			Day3Strength:    models.StrengthBalanced,
			Avg3DayStrength: models.StrengthBalanced,
			Derived:         signals.Badges(models.MACDNeutral, models.RSINeutral),
		})
	}
	return records
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
