// Package models defines data structures for fnoscan
package models

import (
	"time"
)

// Bar represents a single day's price data. Series are chronological.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Quote holds the latest session values reported by a market data source.
// Any field may be zero or nil when the source does not provide it.
type Quote struct {
	Symbol        string   `json:"symbol"`
	LastPrice     float64  `json:"last_price"`
	PreviousClose float64  `json:"previous_close"`
	DayHigh       float64  `json:"day_high"`
	DayLow        float64  `json:"day_low"`
	Volume        int64    `json:"volume"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	AverageVolume *float64 `json:"average_volume,omitempty"`
	YearHigh      *float64 `json:"year_high,omitempty"`
	YearLow       *float64 `json:"year_low,omitempty"`
}

// Fundamentals contains valuation data for a stock. Every value is optional.
type Fundamentals struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	PE            *float64 `json:"pe_ratio,omitempty"`
	ForwardPE     *float64 `json:"forward_pe,omitempty"`
	EPS           *float64 `json:"eps,omitempty"`
	BookValue     *float64 `json:"book_value,omitempty"`
	PB            *float64 `json:"pb_ratio,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"` // fraction, 0.012 = 1.2%
	ROE           *float64 `json:"roe,omitempty"`            // fraction
	ROA           *float64 `json:"roa,omitempty"`            // fraction
	YearHigh      *float64 `json:"fifty_two_week_high,omitempty"`
	YearLow       *float64 `json:"fifty_two_week_low,omitempty"`
	DMA50         *float64 `json:"dma_50,omitempty"`
	DMA200        *float64 `json:"dma_200,omitempty"`
}

// ChartPoint is one bar of the detail chart with its indicator values.
type ChartPoint struct {
	Date   string   `json:"date"`
	Open   float64  `json:"open"`
	High   float64  `json:"high"`
	Low    float64  `json:"low"`
	Close  float64  `json:"close"`
	Volume int64    `json:"volume"`
	MACD   *float64 `json:"macd"`
	Signal *float64 `json:"signal"`
	Hist   *float64 `json:"hist"`
	RSI    *float64 `json:"rsi"`
	EMA20  *float64 `json:"ema_20"`
	EMA50  *float64 `json:"ema_50"`
}

// IndexQuote is a headline index value for the indices strip.
type IndexQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Available bool    `json:"available"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
