package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/fnoscan/internal/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		in     ScoreInputs
		buyer  int
		seller int
		label  models.Strength
	}{
		{
			name:   "bullish histogram above ema",
			in:     ScoreInputs{Histogram: 0.4, RSI: 50, Price: 110, PreviousClose: 108, EMA20: 100, Volume: 1000, AverageVolume: 1000},
			buyer:  70,
			seller: 35,
			label:  models.StrengthBuyers,
		},
		{
			name:   "overbought below ema",
			in:     ScoreInputs{Histogram: -0.4, RSI: 75, Price: 95, PreviousClose: 96, EMA20: 100, Volume: 1000, AverageVolume: 1000},
			buyer:  30,
			seller: 85,
			label:  models.StrengthSellers,
		},
		{
			name:   "oversold with high volume up close",
			in:     ScoreInputs{Histogram: 0.1, RSI: 25, Price: 105, PreviousClose: 100, EMA20: 100, Volume: 2000, AverageVolume: 1000},
			buyer:  90,
			seller: 30,
			label:  models.StrengthBuyers,
		},
		{
			name:   "high volume down close favours sellers",
			in:     ScoreInputs{Histogram: -0.1, RSI: 50, Price: 95, PreviousClose: 100, EMA20: 100, Volume: 2000, AverageVolume: 1000},
			buyer:  35,
			seller: 75,
			label:  models.StrengthSellers,
		},
		{
			name:   "zero histogram counts as bearish",
			in:     ScoreInputs{Histogram: 0, RSI: 50, Price: 110, PreviousClose: 100, EMA20: 100},
			buyer:  50,
			seller: 55,
			label:  models.StrengthBalanced,
		},
		{
			name:   "unknown average volume adds nothing",
			in:     ScoreInputs{Histogram: -0.1, RSI: 50, Price: 110, PreviousClose: 100, EMA20: 100, Volume: 5000000},
			buyer:  50,
			seller: 55,
			label:  models.StrengthBalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buyer, seller, label := Score(tt.in)
			assert.Equal(t, tt.buyer, buyer)
			assert.Equal(t, tt.seller, seller)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestScore_StaysInRange(t *testing.T) {
	for _, hist := range []float64{-1, 0, 1} {
		for _, rsi := range []float64{10, 50, 90} {
			for _, price := range []float64{90, 110} {
				for _, vol := range []int64{0, 5000} {
					b, s, _ := Score(ScoreInputs{Histogram: hist, RSI: rsi, Price: price, PreviousClose: 100, EMA20: 100, Volume: vol, AverageVolume: 1000})
					assert.GreaterOrEqual(t, b, 0)
					assert.LessOrEqual(t, b, 100)
					assert.GreaterOrEqual(t, s, 0)
					assert.LessOrEqual(t, s, 100)
				}
			}
		}
	}
}

func TestIsHighVolume(t *testing.T) {
	assert.True(t, IsHighVolume(1501, 1000))
	assert.False(t, IsHighVolume(1500, 1000))
	assert.False(t, IsHighVolume(1000000, 0))
}
