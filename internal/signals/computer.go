package signals

import (
	"math"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// AverageVolumePeriod is the bar count used when a quote has no average volume.
const AverageVolumePeriod = 20

// Series holds full indicator series aligned with the input bars.
// Undefined entries are NaN.
type Series struct {
	MACD   []float64
	Signal []float64
	Hist   []float64
	RSI    []float64
	EMA20  []float64
	EMA50  []float64
	SMA20  []float64
	SMA50  []float64
}

// Result is the output of Compute.
type Result struct {
	Indicators models.Indicators
	Series     Series
}

// Computer computes indicators for a price history
type Computer struct{}

// NewComputer creates a new signal computer
func NewComputer() *Computer {
	return &Computer{}
}

// Compute calculates the final-bar indicators and composite score from bars
// (oldest first) and the effective quote (see EffectiveQuote).
func (c *Computer) Compute(bars []models.Bar, quote models.Quote) *Result {
	closes := Closes(bars)

	macd, signal, hist := MACD(closes)
	s := Series{
		MACD:   macd,
		Signal: signal,
		Hist:   hist,
		RSI:    RSI(closes, RSIPeriod),
		EMA20:  EMA(closes, ShortSpan),
		EMA50:  EMA(closes, LongSpan),
		SMA20:  SMA(closes, ShortSpan),
		SMA50:  SMA(closes, LongSpan),
	}

	price := quote.LastPrice
	macdVal := OrDefault(Last(s.MACD), 0)
	signalVal := OrDefault(Last(s.Signal), 0)
	histVal := OrDefault(Last(s.Hist), 0)
	rsiVal := OrDefault(Last(s.RSI), 50)
	ema20Val := OrDefault(Last(s.EMA20), price)
	ema50Val := OrDefault(Last(s.EMA50), price)

	var avgVol float64
	if quote.AverageVolume != nil {
		avgVol = *quote.AverageVolume
	}

	buyer, seller, label := Score(ScoreInputs{
		Histogram:     histVal,
		RSI:           rsiVal,
		Price:         price,
		PreviousClose: quote.PreviousClose,
		EMA20:         ema20Val,
		Volume:        quote.Volume,
		AverageVolume: avgVol,
	})

	ind := models.Indicators{
		MACDLine:      Ptr(Last(s.MACD)),
		SignalLine:    Ptr(Last(s.Signal)),
		MACDHistogram: Ptr(Last(s.Hist)),
		MACDStatus:    MACDStatus(macdVal, signalVal),
		RSIValue:      Ptr(Last(s.RSI)),
		RSIZone:       RSIZone(rsiVal),
		SMA20:         Ptr(Last(s.SMA20)),
		SMA50:         Ptr(Last(s.SMA50)),
		EMA20:         Ptr(Last(s.EMA20)),
		EMA50:         Ptr(Last(s.EMA50)),
		Trend:         Trend(price, ema20Val, ema50Val),
		BuyerScore:    buyer,
		SellerScore:   seller,
		StrengthLabel: label,
	}

	return &Result{Indicators: ind, Series: s}
}

// ChartPoints returns the last limit bars with their indicator values.
func ChartPoints(bars []models.Bar, s Series, limit int) []models.ChartPoint {
	start := 0
	if limit > 0 && len(bars) > limit {
		start = len(bars) - limit
	}

	points := make([]models.ChartPoint, 0, len(bars)-start)
	for i := start; i < len(bars); i++ {
		b := bars[i]
		points = append(points, models.ChartPoint{
			Date:   b.Date.Format("2006-01-02"),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			MACD:   at(s.MACD, i),
			Signal: at(s.Signal, i),
			Hist:   at(s.Hist, i),
			RSI:    at(s.RSI, i),
			EMA20:  at(s.EMA20, i),
			EMA50:  at(s.EMA50, i),
		})
	}
	return points
}

// EffectiveQuote fills the quote's missing fields from the bar history:
// last price and volume from the final bar, previous close from the bar
// before it, day range from the final bar, average volume from the last
// AverageVolumePeriod bars and the year range from the whole history.
func EffectiveQuote(bars []models.Bar, q *models.Quote) models.Quote {
	var out models.Quote
	if q != nil {
		out = *q
	}
	if len(bars) == 0 {
		return out
	}

	last := bars[len(bars)-1]
	if out.LastPrice <= 0 {
		out.LastPrice = last.Close
	}
	if out.PreviousClose <= 0 {
		if len(bars) > 1 {
			out.PreviousClose = bars[len(bars)-2].Close
		} else {
			out.PreviousClose = last.Close
		}
	}
	if out.DayHigh <= 0 {
		out.DayHigh = last.High
	}
	if out.DayLow <= 0 {
		out.DayLow = last.Low
	}
	if out.Volume <= 0 {
		out.Volume = last.Volume
	}
	if out.AverageVolume == nil || *out.AverageVolume <= 0 {
		if avg := AverageVolume(Volumes(bars), AverageVolumePeriod); avg > 0 {
			out.AverageVolume = &avg
		}
	}
	if out.YearHigh == nil || out.YearLow == nil {
		hi, lo := math.Inf(-1), math.Inf(1)
		for _, b := range bars {
			hi = math.Max(hi, b.High)
			lo = math.Min(lo, b.Low)
		}
		if out.YearHigh == nil {
			out.YearHigh = &hi
		}
		if out.YearLow == nil {
			out.YearLow = &lo
		}
	}
	return out
}

// Closes extracts closing prices.
func Closes(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts volumes.
func Volumes(bars []models.Bar) []int64 {
	out := make([]int64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

func at(s []float64, i int) *float64 {
	if i < 0 || i >= len(s) {
		return nil
	}
	return Ptr(s[i])
}
