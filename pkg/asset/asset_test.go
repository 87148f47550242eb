package asset

import (
	"math"
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMints(t *testing.T) {
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", base58.Encode(UsdcMint))
	assert.Equal(t, "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", base58.Encode(UsdtMint))

	assert.True(t, SOL.IsNative())
	assert.False(t, USDC.IsNative())
	assert.False(t, USDT.IsNative())
}

func TestToBaseUnits(t *testing.T) {
	for _, tc := range []struct {
		asset    Asset
		amount   string
		expected uint64
	}{
		{SOL, "1", 1_000_000_000},
		{SOL, "0.5", 500_000_000},
		{SOL, "0.000000001", 1},
		{USDC, "1.5", 1_500_000},
		{USDC, "1000000", 1_000_000_000_000},
		{USDT, "0.000001", 1},
		{USDT, "12.34", 12_340_000},
	} {
		actual, err := tc.asset.ToBaseUnits(tc.amount)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual, "%s %s", tc.asset.Symbol, tc.amount)
	}

	for _, invalid := range []string{"abc", "", "1.2.3", "one"} {
		_, err := SOL.ToBaseUnits(invalid)
		assert.Equal(t, ErrInvalidAmount, err, "amount: %q", invalid)
	}
}

func TestToBaseUnits_Saturation(t *testing.T) {
	// Out-of-range values clamp instead of wrapping through the cast.
	for _, tc := range []struct {
		amount   string
		expected uint64
	}{
		{"-1", 0},
		{"-0.000000001", 0},
		{"NaN", 0},
		{"-Inf", 0},
		{"1e300", math.MaxUint64},
		{"Inf", math.MaxUint64},
	} {
		actual, err := SOL.ToBaseUnits(tc.amount)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, actual, "amount: %q", tc.amount)
	}
}

func TestFromBaseUnits(t *testing.T) {
	assert.Equal(t, "1", SOL.FromBaseUnits(1_000_000_000))
	assert.Equal(t, "0.5", SOL.FromBaseUnits(500_000_000))
	assert.Equal(t, "1.5", USDC.FromBaseUnits(1_500_000))
	assert.Equal(t, "0.000001", USDT.FromBaseUnits(1))
}

func TestUnitPrice(t *testing.T) {
	assert.EqualValues(t, 0, SOL.UnitPrice(""))
	assert.EqualValues(t, 5000, SOL.UnitPrice("5000"))
	assert.EqualValues(t, 0, SOL.UnitPrice("not-a-number"))
	assert.EqualValues(t, 0, USDC.UnitPrice(""))
	assert.EqualValues(t, 250, USDC.UnitPrice("250"))

	// USDT always uses its fixed priority fee.
	assert.EqualValues(t, 100, USDT.UnitPrice(""))
	assert.EqualValues(t, 100, USDT.UnitPrice("5000"))
}
