package stocks

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// Filter applies q to records and returns a new, sorted slice. records and
// the records in it are never modified.
func Filter(records []models.StockRecord, q models.StockQuery) []models.StockRecord {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	macdSet := parseSet(q.MACDStatus)
	rsiSet := parseSet(q.RSIZone)
	strengthSet := parseSet(q.Strength)
	day1Set := parseSet(q.PDay1Strength)
	day2Set := parseSet(q.PDay2Strength)
	day3Set := parseSet(q.PDay3Strength)
	avg3Set := parseSet(q.Avg3Strength)

	out := make([]models.StockRecord, 0, len(records))
	for _, r := range records {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Symbol), search) &&
			!strings.Contains(strings.ToLower(r.Name), search) {
			continue
		}
		if q.Sector != "" && r.Sector != q.Sector {
			continue
		}
		if !inRange(r.CurrentPrice, q.MinPrice, q.MaxPrice) {
			continue
		}
		if !inRange(r.Volume, q.MinVolume, q.MaxVolume) {
			continue
		}
		if !inRange(r.CurrentChange, q.MinChangePct, q.MaxChangePct) {
			continue
		}
		if !inRange(r.History.Avg3Day, q.MinAvg3Day, q.MaxAvg3Day) {
			continue
		}
		if !inRange(r.History.Volatility3, q.MinVolatility, q.MaxVolatility) {
			continue
		}
		if q.MaxRank != nil && r.Rank > *q.MaxRank {
			continue
		}

		if q.ConstantOnly && !r.Flags.IsConstantPrice {
			continue
		}
		if q.GainersOnly && !r.Flags.IsGainerToday {
			continue
		}
		if q.LosersOnly && !r.Flags.IsLoserToday {
			continue
		}
		if q.HighVolumeOnly && !r.Flags.IsHighVolume {
			continue
		}

		if !matchSet(macdSet, r.Indicators.MACDStatus) ||
			!matchSet(rsiSet, r.Indicators.RSIZone) ||
			!matchSet(strengthSet, string(r.CurrentStrength)) ||
			!matchSet(day1Set, string(r.Day1Strength)) ||
			!matchSet(day2Set, string(r.Day2Strength)) ||
			!matchSet(day3Set, string(r.Day3Strength)) ||
			!matchSet(avg3Set, string(r.Avg3DayStrength)) {
			continue
		}

		if !matchStrict(q.TodayStr, r.CurrentStrength) ||
			!matchStrict(q.P1Str, r.Day1Strength) ||
			!matchStrict(q.P2Str, r.Day2Strength) ||
			!matchStrict(q.P3Str, r.Day3Strength) ||
			!matchStrict(q.Avg3Str, r.Avg3DayStrength) {
			continue
		}

		out = append(out, r)
	}

	Sort(out, q.SortBy, strings.EqualFold(q.SortOrder, "desc"))
	return out
}

// Sort orders records in place by a named field. Unknown fields sort by rank.
// The sort is stable so equal keys keep their snapshot order.
func Sort(records []models.StockRecord, field string, desc bool) {
	key := sortKey(field)
	slices.SortStableFunc(records, func(a, b models.StockRecord) int {
		c := key(a, b)
		if desc {
			return -c
		}
		return c
	})
}

func sortKey(field string) func(a, b models.StockRecord) int {
	switch strings.ToLower(field) {
	case models.SortSymbol:
		return func(a, b models.StockRecord) int { return cmp.Compare(a.Symbol, b.Symbol) }
	case models.SortPrice:
		return func(a, b models.StockRecord) int { return cmp.Compare(a.CurrentPrice, b.CurrentPrice) }
	case models.SortChange:
		return func(a, b models.StockRecord) int { return cmp.Compare(a.CurrentChange, b.CurrentChange) }
	case models.SortVolume:
		return func(a, b models.StockRecord) int { return cmp.Compare(a.Volume, b.Volume) }
	case models.SortAvg3Day:
		return func(a, b models.StockRecord) int { return cmp.Compare(a.History.Avg3Day, b.History.Avg3Day) }
	case models.SortVolatility:
		return func(a, b models.StockRecord) int {
			return cmp.Compare(a.History.Volatility3, b.History.Volatility3)
		}
	case models.SortRSI:
		return func(a, b models.StockRecord) int {
			return cmp.Compare(deref(a.Indicators.RSIValue), deref(b.Indicators.RSIValue))
		}
	case models.SortStrength:
		return func(a, b models.StockRecord) int {
			return cmp.Compare(a.Indicators.BuyerScore, b.Indicators.BuyerScore)
		}
	default:
		return func(a, b models.StockRecord) int { return cmp.Compare(a.Rank, b.Rank) }
	}
}

// ParseStockQuery maps request query parameters onto a StockQuery.
// min_avg3/max_avg3 take precedence over min_avg_3day_pct/max_avg_3day_pct.
func ParseStockQuery(v url.Values) (models.StockQuery, error) {
	q := models.StockQuery{
		Search:        v.Get("search"),
		Sector:        v.Get("sector"),
		MACDStatus:    v.Get("macd_status"),
		RSIZone:       v.Get("rsi_zone"),
		Strength:      v.Get("strength"),
		PDay1Strength: v.Get("p_day1_strength"),
		PDay2Strength: v.Get("p_day2_strength"),
		PDay3Strength: v.Get("p_day3_strength"),
		Avg3Strength:  v.Get("avg3_strength"),
		TodayStr:      v.Get("today_str"),
		P1Str:         v.Get("p1_str"),
		P2Str:         v.Get("p2_str"),
		P3Str:         v.Get("p3_str"),
		Avg3Str:       v.Get("avg3_str"),
		SortBy:        v.Get("sort_by"),
		SortOrder:     v.Get("sort_dir"),
	}
	if q.SortOrder == "" {
		q.SortOrder = v.Get("sort_order")
	}

	p := queryParser{values: v}
	q.MinPrice = p.floatParam("min_price")
	q.MaxPrice = p.floatParam("max_price")
	q.MinVolume = p.intParam("min_volume")
	q.MaxVolume = p.intParam("max_volume")
	q.MinChangePct = p.floatParam("min_change_pct")
	q.MaxChangePct = p.floatParam("max_change_pct")
	q.MinAvg3Day = p.floatParam("min_avg_3day_pct")
	q.MaxAvg3Day = p.floatParam("max_avg_3day_pct")
	if f := p.floatParam("min_avg3"); f != nil {
		q.MinAvg3Day = f
	}
	if f := p.floatParam("max_avg3"); f != nil {
		q.MaxAvg3Day = f
	}
	q.MinVolatility = p.floatParam("min_volatility")
	q.MaxVolatility = p.floatParam("max_volatility")
	if n := p.intParam("max_rank"); n != nil {
		r := int(*n)
		q.MaxRank = &r
	}
	q.ConstantOnly = p.boolParam("constant_only")
	q.GainersOnly = p.boolParam("gainers_only")
	q.LosersOnly = p.boolParam("losers_only")
	q.HighVolumeOnly = p.boolParam("high_volume_only")

	if p.err != nil {
		return models.StockQuery{}, p.err
	}
	return q, nil
}

// queryParser records the first parse error and keeps going.
type queryParser struct {
	values url.Values
	err    error
}

func (p *queryParser) floatParam(name string) *float64 {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.fail(name, raw)
		return nil
	}
	return &f
}

func (p *queryParser) intParam(name string) *int64 {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(name, raw)
		return nil
	}
	return &n
}

func (p *queryParser) boolParam(name string) bool {
	raw := strings.TrimSpace(p.values.Get(name))
	if raw == "" {
		return false
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, raw)
		return false
	}
	return b
}

func (p *queryParser) fail(name, raw string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid value %q for %s", raw, name)
	}
}

func inRange[T cmp.Ordered](v T, lo, hi *T) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func parseSet(csv string) map[string]struct{} {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	set := make(map[string]struct{})
	for _, part := range strings.Split(csv, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			set[part] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

func matchSet(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	_, ok := set[strings.ToLower(value)]
	return ok
}

func matchStrict(want string, got models.Strength) bool {
	return want == "" || strings.EqualFold(want, string(got))
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
