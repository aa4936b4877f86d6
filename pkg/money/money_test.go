package money

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomsToDecimal(t *testing.T) {
	cases := []struct {
		atoms     int64
		precision int
		want      string
	}{
		{12345, 2, "123.45"},
		{5, 2, "0.05"},
		{0, 2, "0.00"},
		{-12, 2, "-0.12"},
		{-12345, 3, "-12.345"},
		{7, 0, "7"},
		{-7, 0, "-7"},
		{42, -1, "42"},
		{1, 8, "0.00000001"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AtomsToDecimal(big.NewInt(tc.atoms), tc.precision), "atoms=%d p=%d", tc.atoms, tc.precision)
	}
	assert.Equal(t, "0.00", AtomsToDecimal(nil, 2))
}

func TestAtomsToDecimal_RoundTrip(t *testing.T) {
	huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	values := []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(99), big.NewInt(100), big.NewInt(-250), huge}
	for _, atoms := range values {
		for p := 0; p <= 6; p++ {
			s := AtomsToDecimal(atoms, p)
			if p == 0 {
				assert.NotContains(t, s, ".")
			} else {
				parts := strings.SplitN(s, ".", 2)
				require.Len(t, parts, 2)
				assert.Len(t, parts[1], p)
			}
			back, err := ParseAtoms(s, p)
			require.NoError(t, err)
			assert.Equal(t, 0, atoms.Cmp(back), "round trip %s at %d", atoms, p)
		}
	}
}

func TestParseAtoms(t *testing.T) {
	atoms, err := ParseAtoms(" 10.5 ", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1050), atoms.Int64())

	atoms, err = ParseAtoms("1.239", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(123), atoms.Int64())

	atoms, err = ParseAtoms("-1.239", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(-123), atoms.Int64())

	_, err = ParseAtoms("abc", 2)
	assert.Error(t, err)

	assert.Equal(t, int64(0), MustAtoms("abc", 2).Int64())
}

func TestIsRatioBelowThreshold(t *testing.T) {
	cases := []struct {
		name string
		in   RatioCheck
		want bool
	}{
		{"below", RatioCheck{"5", "100", "0.1"}, true},
		{"equal is not below", RatioCheck{"10", "100", "0.1"}, false},
		{"above", RatioCheck{"50", "100", "0.1"}, false},
		{"zero denominator", RatioCheck{"0", "0", "0.5"}, false},
		{"zero denominator decimal", RatioCheck{"1", "0.00", "0.5"}, false},
		{"fractional exact", RatioCheck{"0.1", "0.3", "0.34"}, true},
		{"fractional exact above", RatioCheck{"0.1", "0.3", "0.33"}, false},
		{"negative denominator", RatioCheck{"-1", "-4", "0.3"}, true},
		{"negative denominator above", RatioCheck{"-2", "-4", "0.3"}, false},
		{"malformed numerator", RatioCheck{"x", "4", "0.3"}, false},
		{"malformed threshold", RatioCheck{"1", "4", "ten percent"}, false},
		{"high precision", RatioCheck{"0.0000000001", "1", "0.0000000002"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRatioBelowThreshold(tc.in))
		})
	}
}

func TestIsRatioBelowThreshold_AgreesWithDivision(t *testing.T) {
	for num := int64(0); num <= 20; num++ {
		for den := int64(1); den <= 20; den++ {
			want := new(big.Rat).SetFrac64(num, den).Cmp(big.NewRat(1, 4)) < 0
			got := IsRatioBelowThreshold(RatioCheck{
				Numerator:   big.NewInt(num).String(),
				Denominator: big.NewInt(den).String(),
				Threshold:   "0.25",
			})
			assert.Equal(t, want, got, "%d/%d", num, den)
		}
	}
}

func TestRatioAndSum(t *testing.T) {
	assert.Equal(t, 0.25, Ratio(big.NewInt(1), big.NewInt(4)))
	assert.Equal(t, 0.0, Ratio(big.NewInt(1), big.NewInt(0)))
	assert.Equal(t, 0.0, Ratio(nil, big.NewInt(3)))
	assert.Equal(t, int64(6), Sum(big.NewInt(1), nil, big.NewInt(5)).Int64())
	assert.True(t, ValidThreshold("0.2"))
	assert.False(t, ValidThreshold("0.2x"))
}
