package domain

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the label of the unit prices are displayed in.
const Currency = "ETH"

// Decimals is the number of fractional digits between the display unit and
// the smallest on-chain unit (wei).
const Decimals = 18

// maxPriceLen bounds the textual length of a price.
const maxPriceLen = 96

// plainDecimal matches unsigned decimals without exponent notation.
var plainDecimal = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)$`)

// ToSmallestUnit converts a human-readable decimal price into wei.
// Signs, exponents, amounts longer than maxPriceLen and amounts with more
// than Decimals fractional digits are rejected with ErrInvalidPrice.
func ToSmallestUnit(price string) (*big.Int, error) {
	s := strings.TrimSpace(price)
	if s == "" {
		return nil, fmt.Errorf("%w: empty price", ErrInvalidPrice)
	}

	if len(s) > maxPriceLen || !plainDecimal.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrice, price)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrice, price)
	}
	scaled := d.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidPrice, price, Decimals)
	}
	return scaled.BigInt(), nil
}

// ToDecimal converts wei into a human-readable decimal string without
// trailing zeros. It is the exact inverse of ToSmallestUnit.
func ToDecimal(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -Decimals).String()
}
