package stocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/fnoscan/internal/models"
)

func TestAggregateSectors(t *testing.T) {
	records := []models.StockRecord{
		rec("TCS", "IT", 4000, 1.0, 100, 1),
		rec("INFY", "IT", 1800, 2.5, 200, 2),
		rec("WIPRO", "IT", 500, -0.4, 300, 3),
		rec("SBIN", "Banking", 800, -1.0, 5000, 4),
		rec("HDFCBANK", "Banking", 1600, -1.0, 1000, 5),
		rec("NEWCO", "", 100, 0.333, 10, 6),
	}

	got := AggregateSectors(records)
	require.Len(t, got, 3)

	assert.Equal(t, models.SectorSummary{Name: "Banking", Change: -1.0, Volume: 6000, TopStock: "SBIN", Count: 2}, got[0])
	assert.Equal(t, models.SectorSummary{Name: "IT", Change: 1.03, Volume: 600, TopStock: "INFY", Count: 3}, got[1])
	assert.Equal(t, models.SectorSummary{Name: OtherSector, Change: 0.33, Volume: 10, TopStock: "NEWCO", Count: 1}, got[2])
}

func TestAggregateSectors_Empty(t *testing.T) {
	got := AggregateSectors(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
