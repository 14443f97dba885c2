package rangespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStart(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		rng  string
		want time.Time
	}{
		{"5d", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)},
		{"2wk", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"6mo", time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC)},
		{"1y", time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)},
		{" 5Y ", time.Date(2020, 6, 15, 10, 0, 0, 0, time.UTC)},
		{"ytd", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"max", time.Time{}},
		{"", time.Time{}},
		{"forever", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			assert.Equal(t, tt.want, Start(now, tt.rng))
		})
	}
}

func TestValid(t *testing.T) {
	for _, ok := range []string{"5d", "6mo", "1y", "max", "ytd", "10y"} {
		assert.True(t, Valid(ok), ok)
	}
	for _, bad := range []string{"", "mo", "6months", "0d", "abc"} {
		assert.False(t, Valid(bad), bad)
	}
}
