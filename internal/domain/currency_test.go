package domain

import (
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSmallestUnit(t *testing.T) {
	tests := []struct {
		name  string
		price string
		want  string
	}{
		{"integer", "2", "2000000000000000000"},
		{"fraction", "1.5", "1500000000000000000"},
		{"one wei", "0.000000000000000001", "1"},
		{"zero", "0", "0"},
		{"padded", "  0.025 ", "25000000000000000"},
		{"trailing zeros", "1.500", "1500000000000000000"},
		{"large", "123456789.123456789123456789", "123456789123456789123456789"},
		{"leading dot", ".5", "500000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToSmallestUnit(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestToSmallestUnit_Invalid(t *testing.T) {
	invalid := []string{
		"", "   ", "abc", "-1", "+1", "1.0000000000000000001", "1,5", "1.", "0x10",
		"1e18", "0e-50000000", "1e50000000", "1E2",
		strings.Repeat("9", 97),
	}
	for _, price := range invalid {
		t.Run(price, func(t *testing.T) {
			start := time.Now()
			_, err := ToSmallestUnit(price)
			assert.ErrorIs(t, err, ErrInvalidPrice)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		wei  string
		want string
	}{
		{"1500000000000000000", "1.5"},
		{"2000000000000000000", "2"},
		{"1", "0.000000000000000001"},
		{"0", "0"},
		{"25000000000000000", "0.025"},
	}

	for _, tt := range tests {
		t.Run(tt.wei, func(t *testing.T) {
			wei, ok := new(big.Int).SetString(tt.wei, 10)
			require.True(t, ok)
			assert.Equal(t, tt.want, ToDecimal(wei))
		})
	}

	assert.Equal(t, "0", ToDecimal(nil))
}

func TestUnitConversion_RoundTrip(t *testing.T) {
	prices := []string{
		"0", "1", "1.5", "0.1", "0.000000000000000001", "999999.999999999999999999",
		"3.14159265358979323", "100", "0.05", "42.000000000000000042",
	}

	for _, p := range prices {
		t.Run(p, func(t *testing.T) {
			wei, err := ToSmallestUnit(p)
			require.NoError(t, err)

			back, err := ToSmallestUnit(ToDecimal(wei))
			require.NoError(t, err)

			assert.Equal(t, 0, wei.Cmp(back), "round trip changed %s: %s != %s", p, wei, back)
		})
	}
}
