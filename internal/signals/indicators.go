// Package signals provides technical indicator calculations
package signals

import (
	"math"
)

// Indicator parameters
const (
	MACDFastSpan   = 12
	MACDSlowSpan   = 26
	MACDSignalSpan = 9
	RSIPeriod      = 14
	ShortSpan      = 20
	LongSpan       = 50
)

// EMA returns the exponential moving average series for span, seeded at the
// first value with alpha = 2/(span+1).
func EMA(values []float64, span int) []float64 {
	if len(values) == 0 || span < 1 {
		return nanSeries(len(values))
	}

	out := make([]float64, len(values))
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// SMA returns the simple moving average series. Entries before the first
// full window are NaN.
func SMA(values []float64, window int) []float64 {
	out := nanSeries(len(values))
	if window < 1 || len(values) < window {
		return out
	}

	sum := 0.0
	for i := 0; i < window; i++ {
		sum += values[i]
	}
	out[window-1] = sum / float64(window)
	for i := window; i < len(values); i++ {
		sum += values[i] - values[i-window]
		out[i] = sum / float64(window)
	}
	return out
}

// RSI returns the relative strength index using simple rolling means of gains
// and losses over period. The first change is taken as zero. Entries are NaN
// before a full window and where there was no movement at all.
func RSI(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 1 || len(values) < period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains[i] = change
		} else if change < 0 {
			losses[i] = -change
		}
	}

	for i := period - 1; i < len(values); i++ {
		var g, l float64
		for j := i - period + 1; j <= i; j++ {
			g += gains[j]
			l += losses[j]
		}
		avgGain := g / float64(period)
		avgLoss := l / float64(period)

		switch {
		case avgGain == 0 && avgLoss == 0:
			// no movement, undefined
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - (100 / (1 + rs))
		}
	}
	return out
}

// MACD returns the MACD line (EMA12 - EMA26), its signal line (EMA9 of MACD)
// and the histogram (MACD - signal).
func MACD(values []float64) (macd, signal, hist []float64) {
	fast := EMA(values, MACDFastSpan)
	slow := EMA(values, MACDSlowSpan)

	macd = make([]float64, len(values))
	for i := range values {
		macd[i] = fast[i] - slow[i]
	}
	signal = EMA(macd, MACDSignalSpan)

	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = macd[i] - signal[i]
	}
	return macd, signal, hist
}

// Last returns the final element of s, or NaN when s is empty.
func Last(s []float64) float64 {
	if len(s) == 0 {
		return math.NaN()
	}
	return s[len(s)-1]
}

// Ptr converts a possibly undefined value into an optional one.
func Ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// OrDefault returns v, or def when v is undefined.
func OrDefault(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// AverageVolume returns the mean volume of the last period bars' volumes,
// or 0 when there are none.
func AverageVolume(volumes []int64, period int) float64 {
	if period > len(volumes) {
		period = len(volumes)
	}
	if period <= 0 {
		return 0
	}
	var sum int64
	for _, v := range volumes[len(volumes)-period:] {
		sum += v
	}
	return float64(sum) / float64(period)
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
