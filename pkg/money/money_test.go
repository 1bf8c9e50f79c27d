package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaiseFromFloat(t *testing.T) {
	tests := []struct {
		name   string
		rupees float64
		want   int64
	}{
		{"whole rupees", 500, 50000},
		{"with paise", 123.45, 12345},
		{"rounds up", 0.005, 1},
		{"negative", -99.99, -9999},
		{"zero", 0, 0},
		{"float noise", 4899.9999999999, 490000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PaiseFromFloat(tt.rupees))
		})
	}
}

func TestRupees(t *testing.T) {
	assert.InDelta(t, 123.45, Rupees(12345), 0.0001)
	assert.InDelta(t, -0.5, Rupees(-50), 0.0001)
}

func TestDisplay(t *testing.T) {
	// go-money knows the INR symbol and grouping
	assert.Contains(t, Display(123450), "1,234.50")
}

func TestSum(t *testing.T) {
	assert.Equal(t, int64(600), Sum(100, 200, 300))
	assert.Equal(t, int64(0), Sum())
}
