package simchain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"genlender/chain"
)

const marketDecimals = 8

// Market is a CErc20 market. Cash is the underlying balance held by the market.
// Interest only accrues through AccrueInterest.
type Market struct {
	base
	ledger
	name        string
	symbol      string
	underlying  *ERC20
	comptroller *Comptroller
	model       *JumpRateModel

	mu                  sync.RWMutex
	initialExchangeRate *big.Int
	totalBorrows        *big.Int
	totalReserves       *big.Int
	reserveFactor       *big.Int
}

var _ chain.Market = (*Market)(nil)

func newMarket(b base, underlying *ERC20, comptroller *Comptroller, model *JumpRateModel, name, symbol string) *Market {
	// 0.02 cTokens per underlying unit at launch, adjusted for decimals
	initial := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(underlying.decimals)+18-marketDecimals), nil)
	initial.Mul(initial, big.NewInt(2))
	initial.Div(initial, big.NewInt(100))

	return &Market{
		base:                b,
		ledger:              newLedger(),
		name:                name,
		symbol:              symbol,
		underlying:          underlying,
		comptroller:         comptroller,
		model:               model,
		initialExchangeRate: initial,
		totalBorrows:        new(big.Int),
		totalReserves:       new(big.Int),
		reserveFactor:       percent(10),
	}
}

// deployMarket takes (underlying, comptroller, name, symbol)
func deployMarket(c *Chain, d deployment, args []any) (chain.Contract, error) {
	if err := wantArgs(args, 4); err != nil {
		return nil, err
	}
	underlyingAddr, err := argAddress(args, 0)
	if err != nil {
		return nil, err
	}
	comptrollerAddr, err := argAddress(args, 1)
	if err != nil {
		return nil, err
	}
	name, err := argString(args, 2)
	if err != nil {
		return nil, err
	}
	symbol, err := argString(args, 3)
	if err != nil {
		return nil, err
	}

	underlying, err := lookup[*ERC20](c, underlyingAddr)
	if err != nil {
		return nil, err
	}
	comptroller, err := lookup[*Comptroller](c, comptrollerAddr)
	if err != nil {
		return nil, err
	}
	return newMarket(d.base(), underlying, comptroller, DefaultJumpRateModel(c.blocksPerYear), name, symbol), nil
}

func (m *Market) Name(ctx context.Context) (string, error)    { return m.name, nil }
func (m *Market) Symbol(ctx context.Context) (string, error)  { return m.symbol, nil }
func (m *Market) Decimals(ctx context.Context) (uint8, error) { return marketDecimals, nil }

func (m *Market) Underlying(ctx context.Context) (common.Address, error) {
	return m.underlying.Address(), nil
}

func (m *Market) Comptroller(ctx context.Context) (common.Address, error) {
	return m.comptroller.Address(), nil
}

func (m *Market) GetCash(ctx context.Context) (*big.Int, error) {
	return m.cash(), nil
}

func (m *Market) TotalBorrows(ctx context.Context) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.totalBorrows), nil
}

func (m *Market) TotalReserves(ctx context.Context) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.totalReserves), nil
}

func (m *Market) ReserveFactor(ctx context.Context) (*big.Int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.reserveFactor), nil
}

func (m *Market) ExchangeRateStored(ctx context.Context) (*big.Int, error) {
	return m.exchangeRate(), nil
}

func (m *Market) SupplyRatePerBlock(ctx context.Context) (*big.Int, error) {
	return m.supplyRate(new(big.Int)), nil
}

func (m *Market) BorrowRatePerBlock(ctx context.Context) (*big.Int, error) {
	cash := m.cash()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model.BorrowRate(cash, m.totalBorrows, m.totalReserves), nil
}

func (m *Market) Mint(ctx context.Context, from common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return revert("mint amount must be positive")
	}
	rate := m.exchangeRate()
	if err := m.underlying.move(from, m.address, amount); err != nil {
		return err
	}
	minted := new(big.Int).Mul(amount, wad)
	minted.Div(minted, rate)
	m.mint(from, minted)
	return nil
}

// AccrueInterest applies blocks of borrow interest to borrows and reserves
func (m *Market) AccrueInterest(ctx context.Context, blocks uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cash := m.cash()
	m.mu.Lock()
	defer m.mu.Unlock()

	rate := m.model.BorrowRate(cash, m.totalBorrows, m.totalReserves)
	interest := new(big.Int).Mul(rate, new(big.Int).SetUint64(blocks))
	interest.Mul(interest, m.totalBorrows)
	interest.Div(interest, wad)

	reserves := new(big.Int).Mul(interest, m.reserveFactor)
	reserves.Div(reserves, wad)

	m.totalBorrows.Add(m.totalBorrows, interest)
	m.totalReserves.Add(m.totalReserves, reserves)
	return nil
}

func (m *Market) cash() *big.Int {
	return m.underlying.balance(m.address)
}

// supplyRate returns the per-block supply rate with extraCash added to the pool
func (m *Market) supplyRate(extraCash *big.Int) *big.Int {
	cash := m.cash()
	cash.Add(cash, extraCash)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.model.SupplyRate(cash, m.totalBorrows, m.totalReserves, m.reserveFactor)
}

func (m *Market) exchangeRate() *big.Int {
	supply := m.totalSupply()
	if supply.Sign() == 0 {
		return new(big.Int).Set(m.initialExchangeRate)
	}
	cash := m.cash()
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := cash.Add(cash, m.totalBorrows)
	total.Sub(total, m.totalReserves)
	total.Mul(total, wad)
	return total.Div(total, supply)
}

func (m *Market) setLoans(borrows, reserves *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalBorrows = new(big.Int).Set(borrows)
	m.totalReserves = new(big.Int).Set(reserves)
}
