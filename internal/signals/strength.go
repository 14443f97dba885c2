package signals

import "github.com/bobmcallan/fnoscan/internal/models"

// HighVolumeFactor is the multiple of average volume that counts as high volume.
const HighVolumeFactor = 1.5

// ScoreInputs are the final-bar values feeding the composite score.
type ScoreInputs struct {
	Histogram     float64
	RSI           float64
	Price         float64
	PreviousClose float64
	EMA20         float64
	Volume        int64
	AverageVolume float64
}

// IsHighVolume reports volume above HighVolumeFactor times average.
// Unknown (zero) average volume is never high.
func IsHighVolume(volume int64, avg float64) bool {
	if avg <= 0 {
		return false
	}
	return float64(volume) > avg*HighVolumeFactor
}

// Score computes the buyer and seller strength scores and their label.
func Score(in ScoreInputs) (buyer, seller int, label models.Strength) {
	buyer, seller = 50, 50

	if in.Histogram > 0 {
		buyer += 10
		seller -= 10
	} else {
		buyer -= 10
		seller += 10
	}

	if in.RSI < 30 {
		buyer += 15
		seller -= 5
	} else if in.RSI > 70 {
		seller += 15
		buyer -= 5
	}

	if in.Price > in.EMA20 {
		buyer += 10
		seller -= 5
	} else {
		seller += 10
		buyer -= 5
	}

	if IsHighVolume(in.Volume, in.AverageVolume) {
		if in.Price > in.PreviousClose {
			buyer += 5
		} else {
			seller += 5
		}
	}

	buyer = clamp(buyer, 0, 100)
	seller = clamp(seller, 0, 100)

	switch {
	case buyer >= 60:
		label = models.StrengthBuyers
	case seller >= 60:
		label = models.StrengthSellers
	default:
		label = models.StrengthBalanced
	}
	return buyer, seller, label
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
