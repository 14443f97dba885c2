package signals

import (
	"math"

	"github.com/bobmcallan/fnoscan/internal/models"
)

// StrengthThreshold is the percentage move beyond which one side is labelled.
const StrengthThreshold = 0.20

// StrengthLabel maps a percentage change to a strength label.
// Thresholds are strict: exactly 0.20 is Balanced.
func StrengthLabel(pct float64) models.Strength {
	switch {
	case pct > StrengthThreshold:
		return models.StrengthBuyers
	case pct < -StrengthThreshold:
		return models.StrengthSellers
	default:
		return models.StrengthBalanced
	}
}

// AvgStrengthLabel averages three labels as +1/0/-1 scores and applies the
// same thresholds to the mean.
func AvgStrengthLabel(l1, l2, l3 models.Strength) models.Strength {
	avg := float64(labelScore(l1)+labelScore(l2)+labelScore(l3)) / 3.0
	return StrengthLabel(avg)
}

// ThreeDayAverage is the mean of the three previous-day changes.
func ThreeDayAverage(p1, p2, p3 float64) float64 {
	return (p1 + p2 + p3) / 3.0
}

// ThreeDayVolatility is the population standard deviation of the three changes.
func ThreeDayVolatility(p1, p2, p3 float64) float64 {
	mean := ThreeDayAverage(p1, p2, p3)
	v := ((p1-mean)*(p1-mean) + (p2-mean)*(p2-mean) + (p3-mean)*(p3-mean)) / 3.0
	return math.Sqrt(v)
}

func labelScore(l models.Strength) int {
	switch l {
	case models.StrengthBuyers:
		return 1
	case models.StrengthSellers:
		return -1
	default:
		return 0
	}
}
