package signals

import "github.com/bobmcallan/fnoscan/internal/models"

// MACDStatus classifies the MACD line against its signal line and zero.
func MACDStatus(macd, signal float64) string {
	switch {
	case macd > signal && macd > 0:
		return models.MACDAbove
	case macd < signal && macd < 0:
		return models.MACDBelow
	default:
		return models.MACDNeutral
	}
}

// RSIZone classifies an RSI value. Boundaries are inclusive.
func RSIZone(rsi float64) string {
	switch {
	case rsi >= 70:
		return models.RSIOverbought
	case rsi <= 30:
		return models.RSIOversold
	default:
		return models.RSINeutral
	}
}

// Trend classifies price against the short and long EMAs.
func Trend(price, ema20, ema50 float64) string {
	switch {
	case price > ema20 && ema20 > ema50:
		return models.TrendBullish
	case price < ema20 && ema20 < ema50:
		return models.TrendBearish
	default:
		return models.TrendNeutral
	}
}

// Badges returns the display labels for a MACD status and RSI zone.
func Badges(macdStatus, rsiZone string) models.Derived {
	d := models.Derived{MACDLabel: "Neutral", RSILabel: "Neutral (30-70)"}
	switch macdStatus {
	case models.MACDAbove:
		d.MACDLabel = "Above Zero (Bullish)"
	case models.MACDBelow:
		d.MACDLabel = "Below Zero (Bearish)"
	}
	switch rsiZone {
	case models.RSIOverbought:
		d.RSILabel = "Overbought (>70)"
	case models.RSIOversold:
		d.RSILabel = "Oversold (<30)"
	}
	return d
}
