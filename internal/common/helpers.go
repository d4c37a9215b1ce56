package common

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Baseline decimals for the assets the wallet handles natively.
const (
	BTCDecimals = 8  // satoshis
	ETHDecimals = 18 // wei
	SOLDecimals = 9  // lamports
	XRPDecimals = 6  // drops
	TRXDecimals = 6  // sun
)

// FormatWithDecimals converts an integer base-unit value to a decimal string
// by inserting the decimal point. No float precision loss.
// Example: FormatWithDecimals(24981836, 9) = "0.024981836"
func FormatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// FormatBaseUnits is FormatWithDecimals over big.Int, for wei-scale values.
func FormatBaseUnits(value *big.Int, decimals int) string {
	neg := value.Sign() < 0
	s := new(big.Int).Abs(value).String()

	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	out := s[:pos] + "." + s[pos:]
	if neg {
		out = "-" + out
	}
	return out
}

// ParseWithDecimals converts a decimal string to integer base units by
// removing the decimal point. Excess fractional digits are truncated.
func ParseWithDecimals(s string, decimals int) (uint64, error) {
	combined, err := shiftDecimal(s, decimals)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(combined, 10, 64)
}

// ParseToBaseUnits is ParseWithDecimals over big.Int.
func ParseToBaseUnits(s string, decimals int) (*big.Int, error) {
	combined, err := shiftDecimal(s, decimals)
	if err != nil {
		return nil, err
	}
	n, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

func shiftDecimal(s string, decimals int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")

	if len(parts) == 1 {
		return parts[0] + strings.Repeat("0", decimals), nil
	}

	if len(parts) != 2 {
		return "", fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := parts[1]

	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	return whole + frac, nil
}

// CompareAmounts compares two decimal string amounts at the given precision
// without float precision loss.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b, and error if parsing fails
func CompareAmounts(a, b string, decimals int) (int, error) {
	aVal, err := ParseToBaseUnits(a, decimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := ParseToBaseUnits(b, decimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	return aVal.Cmp(bVal), nil
}
