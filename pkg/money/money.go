// Package money implements fixed-point arithmetic over integer atoms.
//
// An amount is an arbitrary-precision count of the smallest unit of an
// equivalent ("atoms") together with that equivalent's precision. Amounts
// travel through the ledger as decimal strings; every comparison and
// aggregation in the engine goes through this package so that no money
// value is ever parsed into a float.
package money

import (
	"math/big"
	"strings"

	"trustmap/pkg/errors"

	"github.com/shopspring/decimal"
)

// DefaultPrecision applies when an equivalent is missing from the
// equivalents table.
const DefaultPrecision = 2

// AtomsToDecimal formats atoms as a decimal string with exactly precision
// fractional digits. A precision of zero or less yields the signed integer
// with no decimal point.
func AtomsToDecimal(atoms *big.Int, precision int) string {
	if atoms == nil {
		atoms = new(big.Int)
	}
	sign := ""
	if atoms.Sign() < 0 {
		sign = "-"
	}
	digits := new(big.Int).Abs(atoms).String()
	if precision <= 0 {
		return sign + digits
	}
	if len(digits) <= precision {
		digits = strings.Repeat("0", precision-len(digits)+1) + digits
	}
	cut := len(digits) - precision
	return sign + digits[:cut] + "." + digits[cut:]
}

// ParseAtoms converts a decimal string to atoms at the given precision.
// Digits beyond precision are truncated toward zero.
func ParseAtoms(value string, precision int) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidAmount, value)
	}
	if precision < 0 {
		precision = 0
	}
	return d.Shift(int32(precision)).BigInt(), nil
}

// MustAtoms is ParseAtoms for fail-soft call sites: malformed input counts as zero.
func MustAtoms(value string, precision int) *big.Int {
	atoms, err := ParseAtoms(value, precision)
	if err != nil {
		return new(big.Int)
	}
	return atoms
}

// RatioCheck holds the operands of IsRatioBelowThreshold, all decimal strings.
type RatioCheck struct {
	Numerator   string
	Denominator string
	Threshold   string
}

// IsRatioBelowThreshold reports whether Numerator/Denominator < Threshold.
// The comparison is done by cross-multiplication on exact decimals. A zero
// denominator or any unparsable operand is never below the threshold.
func IsRatioBelowThreshold(c RatioCheck) bool {
	num, err := decimal.NewFromString(strings.TrimSpace(c.Numerator))
	if err != nil {
		return false
	}
	den, err := decimal.NewFromString(strings.TrimSpace(c.Denominator))
	if err != nil || den.IsZero() {
		return false
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(c.Threshold))
	if err != nil {
		return false
	}

	bound := threshold.Mul(den)
	if den.IsNegative() {
		return num.GreaterThan(bound)
	}
	return num.LessThan(bound)
}

// ValidThreshold reports whether s parses as a decimal.
func ValidThreshold(s string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(s))
	return err == nil
}

// Ratio returns num/den as a float for presentation. The division is exact
// until the final conversion. A zero denominator yields 0.
func Ratio(num, den *big.Int) float64 {
	if num == nil || den == nil || den.Sign() == 0 {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}

// Sum adds atoms; nil values are skipped.
func Sum(values ...*big.Int) *big.Int {
	total := new(big.Int)
	for _, v := range values {
		if v != nil {
			total.Add(total, v)
		}
	}
	return total
}
