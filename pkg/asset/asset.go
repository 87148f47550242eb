// Package asset defines the transferable assets the gateway understands and
// the per-asset parameters used when constructing transfers.
package asset

import (
	"crypto/ed25519"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount format")

// Mint addresses on mainnet-beta.
//
// USDC: EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
// USDT: Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB
var (
	UsdcMint = ed25519.PublicKey{198, 250, 122, 243, 190, 219, 173, 58, 61, 101, 243, 106, 171, 201, 116, 49, 177, 187, 228, 194, 210, 246, 224, 228, 124, 166, 2, 3, 69, 47, 93, 97}
	UsdtMint = ed25519.PublicKey{3, 141, 66, 116, 108, 246, 219, 88, 243, 42, 253, 75, 119, 253, 9, 45, 177, 165, 231, 18, 140, 15, 127, 56, 101, 143, 250, 65, 88, 201, 131, 194}
)

// Asset describes a transferable asset and the parameters its transfer
// transactions are built with.
type Asset struct {
	// Symbol is the asset code used in memo payloads (SOL, USDC, USDT).
	Symbol string

	// Decimals is the number of base-unit decimal places.
	Decimals int32

	// Mint is the SPL token mint, or nil for the native token.
	Mint ed25519.PublicKey

	// ComputeUnitLimit is the compute budget requested for transfers.
	ComputeUnitLimit uint32

	// DefaultUnitPrice is the priority fee (micro-lamports per compute
	// unit) applied when the caller doesn't provide one.
	DefaultUnitPrice uint64

	// FixedUnitPrice forces DefaultUnitPrice regardless of any
	// caller-provided fee.
	FixedUnitPrice bool

	// MemoSignedBySender marks the sender as a required signer on the
	// memo instruction.
	MemoSignedBySender bool
}

var (
	SOL = Asset{
		Symbol:           "SOL",
		Decimals:         9,
		ComputeUnitLimit: 100_000,
	}
	USDC = Asset{
		Symbol:           "USDC",
		Decimals:         6,
		Mint:             UsdcMint,
		ComputeUnitLimit: 100_000,
	}
	USDT = Asset{
		Symbol:             "USDT",
		Decimals:           6,
		Mint:               UsdtMint,
		ComputeUnitLimit:   300_000,
		DefaultUnitPrice:   100,
		FixedUnitPrice:     true,
		MemoSignedBySender: true,
	}
)

// IsNative reports whether the asset is the chain's native token.
func (a Asset) IsNative() bool {
	return a.Mint == nil
}

// ToBaseUnits converts a human-readable decimal amount string to base units.
// Scaling multiplies through float64 with a saturating truncation: NaN and
// negative values clamp to zero, values past the uint64 range clamp to the
// maximum. Matches the wallet clients that produce these amounts.
func (a Asset) ToBaseUnits(amount string) (uint64, error) {
	val, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	scaled := val * math.Pow10(int(a.Decimals))
	switch {
	case math.IsNaN(scaled) || scaled <= 0:
		return 0, nil
	case scaled >= math.MaxUint64:
		return math.MaxUint64, nil
	}
	return uint64(scaled), nil
}

// FromBaseUnits formats a base-unit quantity as a human-readable decimal
// string.
func (a Asset) FromBaseUnits(baseUnits uint64) string {
	return decimal.NewFromInt(int64(baseUnits)).Shift(-a.Decimals).String()
}

// UnitPrice resolves the compute unit price for a transfer, taking a
// caller-provided priority fee into account where the asset permits one.
func (a Asset) UnitPrice(feeAmount string) uint64 {
	if a.FixedUnitPrice || feeAmount == "" {
		return a.DefaultUnitPrice
	}
	price, err := strconv.ParseUint(feeAmount, 10, 64)
	if err != nil {
		return a.DefaultUnitPrice
	}
	return price
}
