package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStockRecord_CloneIsIndependent(t *testing.T) {
	orig := StockRecord{
		Symbol:    "RELIANCE",
		MarketCap: Float64(1e12),
		Indicators: Indicators{
			RSIValue: Float64(55),
		},
		Returns:   map[string]*float64{"1M": Float64(2.5)},
		ChartData: []ChartPoint{{Date: "2025-01-02", Close: 100}},
	}

	c := orig.Clone()
	*c.MarketCap = 1
	*c.Indicators.RSIValue = 10
	*c.Returns["1M"] = -1
	c.Returns["1Y"] = Float64(3)
	c.ChartData[0].Close = 1

	assert.Equal(t, 1e12, *orig.MarketCap)
	assert.Equal(t, 55.0, *orig.Indicators.RSIValue)
	assert.Equal(t, 2.5, *orig.Returns["1M"])
	assert.NotContains(t, orig.Returns, "1Y")
	assert.Equal(t, 100.0, orig.ChartData[0].Close)
}

func TestStockRecord_CloneKeepsNils(t *testing.T) {
	orig := StockRecord{Symbol: "TCS"}
	c := orig.Clone()
	assert.Nil(t, c.MarketCap)
	assert.Nil(t, c.Returns)
	assert.Nil(t, c.ChartData)
}

func TestSnapshot_Len(t *testing.T) {
	snap := &Snapshot{Records: []StockRecord{{Symbol: "INFY"}, {Symbol: "TCS"}}}
	assert.Equal(t, 2, snap.Len())

	var empty *Snapshot
	assert.Equal(t, 0, empty.Len())
}

func TestSnapshot_Age(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	snap := &Snapshot{PublishedAt: now.Add(-90 * time.Second)}
	assert.Equal(t, 90*time.Second, snap.Age(now))
	assert.Equal(t, time.Duration(0), (&Snapshot{}).Age(now))
}
