package models

import (
	"slices"
	"time"
)

// Strength is the momentum label attached to a percentage move.
type Strength string

const (
	StrengthBuyers   Strength = "Buyers"
	StrengthSellers  Strength = "Sellers"
	StrengthBalanced Strength = "Balanced"
)

// Indicator state values
const (
	MACDAbove   = "above"
	MACDBelow   = "below"
	MACDNeutral = "neutral"

	RSIOverbought = "overbought"
	RSIOversold   = "oversold"
	RSINeutral    = "neutral"

	TrendBullish = "bullish"
	TrendBearish = "bearish"
	TrendNeutral = "neutral"
)

// History holds the three previous-day changes and their summary.
// Values are percentages and are stored unrounded.
type History struct {
	PDay1       float64 `json:"p_day1"`
	PDay2       float64 `json:"p_day2"`
	PDay3       float64 `json:"p_day3"`
	Avg3Day     float64 `json:"avg_3day"`
	Volatility3 float64 `json:"volatility_3_day" validate:"gte=0"`
}

// Indicators holds final-bar technical values. Values that need more history
// than is available are nil.
type Indicators struct {
	MACDLine      *float64 `json:"macd_line"`
	SignalLine    *float64 `json:"signal_line"`
	MACDHistogram *float64 `json:"macd_histogram"`
	MACDStatus    string   `json:"macd_status" validate:"oneof=above below neutral"`
	RSIValue      *float64 `json:"rsi_value"`
	RSIZone       string   `json:"rsi_zone" validate:"oneof=overbought oversold neutral"`
	SMA20         *float64 `json:"sma_20"`
	SMA50         *float64 `json:"sma_50"`
	EMA20         *float64 `json:"ema_20"`
	EMA50         *float64 `json:"ema_50"`
	Trend         string   `json:"trend" validate:"oneof=bullish bearish neutral"`
	BuyerScore    int      `json:"buyer_strength_score" validate:"gte=0,lte=100"`
	SellerScore   int      `json:"seller_strength_score" validate:"gte=0,lte=100"`
	StrengthLabel Strength `json:"strength_label" validate:"oneof=Buyers Sellers Balanced"`
}

// Flags are boolean screens derived at build time.
type Flags struct {
	IsConstantPrice     bool `json:"is_constant_price"`
	IsGainerToday       bool `json:"is_gainer_today"`
	IsLoserToday        bool `json:"is_loser_today"`
	IsHighVolume        bool `json:"is_high_volume"`
	IsBreakoutCandidate bool `json:"is_breakout_candidate"`
}

// Derived carries display badges consumed by the web client.
type Derived struct {
	MACDLabel string `json:"macdLabel"`
	RSILabel  string `json:"rsiLabel"`
}

// StockRecord is one fully built row of a snapshot.
type StockRecord struct {
	Symbol           string    `json:"symbol" validate:"required"`
	Name             string    `json:"name"`
	Sector           string    `json:"sector"`
	CurrentPrice     float64   `json:"current_price" validate:"gt=0"`
	PreviousClose    float64   `json:"previous_close" validate:"gte=0"`
	CurrentChangeAbs float64   `json:"current_change_abs"`
	CurrentChange    float64   `json:"current_change"`
	DayHigh          float64   `json:"day_high" validate:"gte=0"`
	DayLow           float64   `json:"day_low" validate:"gte=0"`
	Volume           int64     `json:"volume" validate:"gte=0"`
	MarketCap        *float64  `json:"market_cap"`
	LastUpdated      time.Time `json:"last_updated" validate:"required"`
	Rank             int       `json:"rank" validate:"gte=0"`

	History    History    `json:"history"`
	Indicators Indicators `json:"indicators"`
	Flags      Flags      `json:"flags"`

	CurrentStrength Strength `json:"current_strength" validate:"oneof=Buyers Sellers Balanced"`
	Day1Strength    Strength `json:"day1_strength" validate:"oneof=Buyers Sellers Balanced"`
	Day2Strength    Strength `json:"day2_strength" validate:"oneof=Buyers Sellers Balanced"`
	Day3Strength    Strength `json:"day3_strength" validate:"oneof=Buyers Sellers Balanced"`
	Avg3DayStrength Strength `json:"avg_3day_strength" validate:"oneof=Buyers Sellers Balanced"`

	Derived Derived `json:"derived"`

	// Enrichment, populated on detail requests only
	PERatio       *float64            `json:"pe_ratio,omitempty"`
	IndustryPE    *float64            `json:"industry_pe,omitempty"`
	EPS           *float64            `json:"eps,omitempty"`
	BookValue     *float64            `json:"book_value,omitempty"`
	PBRatio       *float64            `json:"pb_ratio,omitempty"`
	DividendYield *float64            `json:"dividend_yield,omitempty"`
	ROE           *float64            `json:"roe,omitempty"`
	ROCE          *float64            `json:"roce,omitempty"`
	YearHigh      *float64            `json:"fifty_two_week_high,omitempty"`
	YearLow       *float64            `json:"fifty_two_week_low,omitempty"`
	DMA50         *float64            `json:"dma_50,omitempty"`
	DMA200        *float64            `json:"dma_200,omitempty"`
	Returns       map[string]*float64 `json:"returns,omitempty"`
	ChartData     []ChartPoint        `json:"chart_data,omitempty"`
}

// Clone returns a copy of the record that shares no mutable state with r.
func (r *StockRecord) Clone() StockRecord {
	c := *r
	c.MarketCap = clonePtr(r.MarketCap)
	c.Indicators.MACDLine = clonePtr(r.Indicators.MACDLine)
	c.Indicators.SignalLine = clonePtr(r.Indicators.SignalLine)
	c.Indicators.MACDHistogram = clonePtr(r.Indicators.MACDHistogram)
	c.Indicators.RSIValue = clonePtr(r.Indicators.RSIValue)
	c.Indicators.SMA20 = clonePtr(r.Indicators.SMA20)
	c.Indicators.SMA50 = clonePtr(r.Indicators.SMA50)
	c.Indicators.EMA20 = clonePtr(r.Indicators.EMA20)
	c.Indicators.EMA50 = clonePtr(r.Indicators.EMA50)
	c.PERatio = clonePtr(r.PERatio)
	c.IndustryPE = clonePtr(r.IndustryPE)
	c.EPS = clonePtr(r.EPS)
	c.BookValue = clonePtr(r.BookValue)
	c.PBRatio = clonePtr(r.PBRatio)
	c.DividendYield = clonePtr(r.DividendYield)
	c.ROE = clonePtr(r.ROE)
	c.ROCE = clonePtr(r.ROCE)
	c.YearHigh = clonePtr(r.YearHigh)
	c.YearLow = clonePtr(r.YearLow)
	c.DMA50 = clonePtr(r.DMA50)
	c.DMA200 = clonePtr(r.DMA200)
	if r.Returns != nil {
		c.Returns = make(map[string]*float64, len(r.Returns))
		for k, v := range r.Returns {
			c.Returns[k] = clonePtr(v)
		}
	}
	c.ChartData = slices.Clone(r.ChartData)
	return c
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
