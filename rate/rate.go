// Package rate projects annualized lending-reward rates from per-block share rates
// and checks that adding capital to a market does not raise the projected rate.
package rate

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"genlender/shared"
)

// Params configures annualization.
type Params struct {
	// BlocksPerYear converts a per-block rate to a yearly one
	BlocksPerYear uint64
	// Decimals is the fixed-point base of the block share rate
	Decimals int32
}

// DefaultParams returns the Fantom parameters (3154 * 10^4 blocks, 18 decimals)
func DefaultParams() Params {
	return Params{
		BlocksPerYear: shared.DefaultBlocksPerYear,
		Decimals:      shared.DefaultDecimals,
	}
}

// ParamsFromConfig extracts the rate parameters from a fixture config
func ParamsFromConfig(cfg *shared.Config) Params {
	return Params{
		BlocksPerYear: cfg.BlocksPerYear,
		Decimals:      cfg.Decimals,
	}
}

// Validate validates the parameters
func (p Params) Validate() error {
	if p.BlocksPerYear == 0 {
		return fmt.Errorf("blocks per year must be positive")
	}
	if p.Decimals < 0 || p.Decimals > shared.MaxDecimals {
		return fmt.Errorf("decimals must be between 0 and %d, got %d", shared.MaxDecimals, p.Decimals)
	}
	return nil
}

// AnnualizedRate is a per-block share rate scaled to a year. Raw keeps the
// fixed-point base of the block share, so Raw / 10^Decimals is the yearly fraction.
type AnnualizedRate struct {
	BlockShare *big.Int
	Raw        *big.Int
	Decimals   int32
}

// Decimal returns the rate as a fraction (0.05 = 5%)
func (r *AnnualizedRate) Decimal() decimal.Decimal {
	if r == nil || r.Raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(r.Raw, -r.Decimals)
}

// Percent returns the rate in percent
func (r *AnnualizedRate) Percent() decimal.Decimal {
	return r.Decimal().Shift(2)
}

// Cmp compares two rates by value
func (r *AnnualizedRate) Cmp(other *AnnualizedRate) int {
	return r.Decimal().Cmp(other.Decimal())
}

func (r *AnnualizedRate) String() string {
	return r.Decimal().String()
}

// Report holds both sides of a diminishing-returns check
type Report struct {
	Position  *big.Int
	Baseline  *AnnualizedRate
	Projected *AnnualizedRate
}

// Drop is how much the projected rate falls below the baseline
func (r *Report) Drop() decimal.Decimal {
	return r.Baseline.Decimal().Sub(r.Projected.Decimal())
}
