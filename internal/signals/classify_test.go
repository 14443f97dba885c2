package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/fnoscan/internal/models"
)

func TestMACDStatus(t *testing.T) {
	tests := []struct {
		macd, signal float64
		want         string
	}{
		{1.2, 0.8, models.MACDAbove},
		{-1.2, -0.8, models.MACDBelow},
		{0.5, 0.8, models.MACDNeutral},   // positive but under signal
		{-0.5, -0.8, models.MACDNeutral}, // negative but over signal
		{0, 0, models.MACDNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MACDStatus(tt.macd, tt.signal), "macd=%v signal=%v", tt.macd, tt.signal)
	}
}

func TestRSIZone(t *testing.T) {
	tests := []struct {
		rsi  float64
		want string
	}{
		{70, models.RSIOverbought},
		{85, models.RSIOverbought},
		{69.99, models.RSINeutral},
		{50, models.RSINeutral},
		{30.01, models.RSINeutral},
		{30, models.RSIOversold},
		{12, models.RSIOversold},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RSIZone(tt.rsi), "rsi=%v", tt.rsi)
	}
}

func TestTrend(t *testing.T) {
	assert.Equal(t, models.TrendBullish, Trend(110, 105, 100))
	assert.Equal(t, models.TrendBearish, Trend(90, 95, 100))
	assert.Equal(t, models.TrendNeutral, Trend(110, 95, 100))
	assert.Equal(t, models.TrendNeutral, Trend(100, 100, 100))
}

func TestBadges(t *testing.T) {
	d := Badges(models.MACDAbove, models.RSIOversold)
	assert.Equal(t, "Above Zero (Bullish)", d.MACDLabel)
	assert.Equal(t, "Oversold (<30)", d.RSILabel)

	d = Badges(models.MACDBelow, models.RSIOverbought)
	assert.Equal(t, "Below Zero (Bearish)", d.MACDLabel)
	assert.Equal(t, "Overbought (>70)", d.RSILabel)

	d = Badges(models.MACDNeutral, models.RSINeutral)
	assert.Equal(t, "Neutral", d.MACDLabel)
	assert.Equal(t, "Neutral (30-70)", d.RSILabel)
}
