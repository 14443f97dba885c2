package signals

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/fnoscan/internal/models"
)

func TestStrengthLabel_Boundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want models.Strength
	}{
		{0.21, models.StrengthBuyers},
		{0.2000001, models.StrengthBuyers},
		{0.20, models.StrengthBalanced},
		{0, models.StrengthBalanced},
		{-0.20, models.StrengthBalanced},
		{-0.2000001, models.StrengthSellers},
		{-3.5, models.StrengthSellers},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StrengthLabel(tt.pct), "pct=%v", tt.pct)
	}
}

func TestAvgStrengthLabel(t *testing.T) {
	B, S, N := models.StrengthBuyers, models.StrengthSellers, models.StrengthBalanced

	tests := []struct {
		l1, l2, l3 models.Strength
		want       models.Strength
	}{
		{S, B, N, N},
		{S, B, S, S},
		{B, B, N, B},
		{B, N, N, B}, // 1/3 > 0.20
		{S, N, N, S},
		{N, N, N, N},
		{B, S, N, N},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AvgStrengthLabel(tt.l1, tt.l2, tt.l3), "%s,%s,%s", tt.l1, tt.l2, tt.l3)
	}
}

func TestThreeDayAverage_Worked(t *testing.T) {
	p1, p2, p3 := -1.54, 1.69, -0.19

	avg := ThreeDayAverage(p1, p2, p3)
	assert.InDelta(t, -0.01, math.Round(avg*100)/100, 1e-9)
	assert.Equal(t, models.StrengthBalanced, StrengthLabel(avg))

	labels := []models.Strength{StrengthLabel(p1), StrengthLabel(p2), StrengthLabel(p3)}
	assert.Equal(t, []models.Strength{models.StrengthSellers, models.StrengthBuyers, models.StrengthBalanced}, labels)
	assert.Equal(t, models.StrengthBalanced, AvgStrengthLabel(labels[0], labels[1], labels[2]))
}

func TestThreeDayAverage_Identity(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		p1 := r.Float64()*20 - 10
		p2 := r.Float64()*20 - 10
		p3 := r.Float64()*20 - 10
		assert.InDelta(t, (p1+p2+p3)/3, ThreeDayAverage(p1, p2, p3), 1e-12)
	}
}

func TestThreeDayVolatility(t *testing.T) {
	assert.InDelta(t, math.Sqrt(2.0/3.0), ThreeDayVolatility(1, 2, 3), 1e-12)
	assert.InDelta(t, 0.0, ThreeDayVolatility(0.5, 0.5, 0.5), 1e-12)
	assert.InDelta(t, ThreeDayVolatility(1, 2, 3), ThreeDayVolatility(-3, -2, -1), 1e-12)
}
