package stocks

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// OtherSector groups records with no sector.
const OtherSector = "Others"

type sectorAcc struct {
	total      decimal.Decimal
	volume     int64
	count      int
	best       string
	bestChange float64
}

// AggregateSectors groups records by sector. Change is the mean of
// current_change rounded to 2 dp, the top stock is the highest change (first
// wins ties), and sectors are ordered by total volume, largest first.
func AggregateSectors(records []models.StockRecord) []models.SectorSummary {
	acc := make(map[string]*sectorAcc)
	order := make([]string, 0)

	for _, r := range records {
		name := r.Sector
		if name == "" {
			name = OtherSector
		}
		a, ok := acc[name]
		if !ok {
			a = &sectorAcc{total: decimal.Zero, best: r.Symbol, bestChange: r.CurrentChange}
			acc[name] = a
			order = append(order, name)
		} else if r.CurrentChange > a.bestChange {
			a.best = r.Symbol
			a.bestChange = r.CurrentChange
		}
		a.total = a.total.Add(decimal.NewFromFloat(r.CurrentChange))
		a.volume += r.Volume
		a.count++
	}

	out := make([]models.SectorSummary, 0, len(order))
	for _, name := range order {
		a := acc[name]
		mean := a.total.Div(decimal.NewFromInt(int64(a.count))).Round(2)
		out = append(out, models.SectorSummary{
			Name:     name,
			Change:   mean.InexactFloat64(),
			Volume:   a.volume,
			TopStock: a.best,
			Count:    a.count,
		})
	}

	slices.SortStableFunc(out, func(x, y models.SectorSummary) int {
		return cmp.Compare(y.Volume, x.Volume)
	})
	return out
}
