package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		raw    string
		exact  string
		digits string
	}{
		{"VS-241951/1", "VS2419511", "2419511"},
		{"vs 241951 / 1", "VS2419511", "2419511"},
		{"VS\u2013241951\u20141", "VS2419511", "2419511"},
		{"INV.2024.0007", "INV20240007", "20240007"},
		{"", "", ""},
		{"---", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			key := NormalizeKey(tt.raw)
			assert.Equal(t, tt.exact, key.Exact)
			assert.Equal(t, tt.digits, key.Digits)
		})
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	for _, raw := range []string{"VS-241951/1", "inv\u2014007", "A b C 1 2 3", "\u00a0x-9"} {
		exact := ExactKey(raw)
		digits := DigitsKey(raw)
		assert.Equal(t, exact, ExactKey(exact), raw)
		assert.Equal(t, digits, DigitsKey(digits), raw)
	}
}
