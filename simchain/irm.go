package simchain

import (
	"math/big"
)

var wad = big.NewInt(1e18)

// JumpRateModel is the Compound jump rate interest model. Rates are per block,
// scaled by 1e18.
type JumpRateModel struct {
	BaseRatePerBlock       *big.Int
	MultiplierPerBlock     *big.Int
	JumpMultiplierPerBlock *big.Int
	Kink                   *big.Int
}

// NewJumpRateModel converts yearly parameters to per-block ones
func NewJumpRateModel(baseRatePerYear, multiplierPerYear, jumpMultiplierPerYear, kink, blocksPerYear *big.Int) *JumpRateModel {
	return &JumpRateModel{
		BaseRatePerBlock:       new(big.Int).Div(baseRatePerYear, blocksPerYear),
		MultiplierPerBlock:     new(big.Int).Div(multiplierPerYear, blocksPerYear),
		JumpMultiplierPerBlock: new(big.Int).Div(jumpMultiplierPerYear, blocksPerYear),
		Kink:                   new(big.Int).Set(kink),
	}
}

// DefaultJumpRateModel is the stablecoin model used by the Scream markets:
// 0% base, 7% multiplier, 109% jump multiplier, 80% kink
func DefaultJumpRateModel(blocksPerYear *big.Int) *JumpRateModel {
	return NewJumpRateModel(
		new(big.Int),
		percent(7),
		percent(109),
		percent(80),
		blocksPerYear,
	)
}

// UtilizationRate = borrows / (cash + borrows - reserves)
func (m *JumpRateModel) UtilizationRate(cash, borrows, reserves *big.Int) *big.Int {
	if borrows.Sign() == 0 {
		return new(big.Int)
	}
	total := new(big.Int).Add(cash, borrows)
	total.Sub(total, reserves)
	if total.Sign() <= 0 {
		return new(big.Int).Set(wad)
	}
	util := new(big.Int).Mul(borrows, wad)
	return util.Div(util, total)
}

func (m *JumpRateModel) BorrowRate(cash, borrows, reserves *big.Int) *big.Int {
	util := m.UtilizationRate(cash, borrows, reserves)

	if util.Cmp(m.Kink) <= 0 {
		rate := new(big.Int).Mul(util, m.MultiplierPerBlock)
		rate.Div(rate, wad)
		return rate.Add(rate, m.BaseRatePerBlock)
	}

	normal := new(big.Int).Mul(m.Kink, m.MultiplierPerBlock)
	normal.Div(normal, wad)
	normal.Add(normal, m.BaseRatePerBlock)

	excess := new(big.Int).Sub(util, m.Kink)
	excess.Mul(excess, m.JumpMultiplierPerBlock)
	excess.Div(excess, wad)
	return excess.Add(excess, normal)
}

// SupplyRate = util * borrowRate * (1 - reserveFactor)
func (m *JumpRateModel) SupplyRate(cash, borrows, reserves, reserveFactor *big.Int) *big.Int {
	oneMinusReserve := new(big.Int).Sub(wad, reserveFactor)
	rateToPool := m.BorrowRate(cash, borrows, reserves)
	rateToPool.Mul(rateToPool, oneMinusReserve)
	rateToPool.Div(rateToPool, wad)

	rate := m.UtilizationRate(cash, borrows, reserves)
	rate.Mul(rate, rateToPool)
	return rate.Div(rate, wad)
}

// percent returns p% scaled by 1e18
func percent(p int64) *big.Int {
	v := new(big.Int).Mul(big.NewInt(p), wad)
	return v.Div(v, big.NewInt(100))
}
