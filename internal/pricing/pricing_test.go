package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autoprice/internal/pricing"
)

func TestFormatRange(t *testing.T) {
	r := pricing.FormatRange(12345)

	assert.Equal(t, 12300.0, r.Price)
	assert.Equal(t, 11100.0, r.PriceMin)
	assert.Equal(t, 13600.0, r.PriceMax)
	assert.Equal(t, 0.9, r.Confidence)
}

func TestRoundToHundred(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{250, 200},
		{350, 400},
		{149.99, 100},
		{150, 200},
		{0, 0},
		{12345, 12300},
		{99950, 100000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, pricing.RoundToHundred(tt.in), "RoundToHundred(%v)", tt.in)
	}
}

func TestFormatRange_Ordering(t *testing.T) {
	for _, p := range []float64{500, 8000, 23456.78, 150000} {
		r := pricing.FormatRange(p)
		assert.LessOrEqual(t, r.PriceMin, r.Price)
		assert.LessOrEqual(t, r.Price, r.PriceMax)
	}
}
