// Package ratetest provides block share sources for testing the estimator
// without a chain.
package ratetest

import (
	"context"
	"fmt"
	"math/big"
	"sync"
)

var wad = big.NewInt(1e18)

// Call records one CompBlockShareInWant invocation
type Call struct {
	Change *big.Int
	Add    bool
}

// MockSource follows the lender plugin's reward curve: a fixed reward speed
// spread over the market's supply (in want), priced into want and cut by 10%.
type MockSource struct {
	Speed  *big.Int // reward tokens per block, 1e18 scaled
	Supply *big.Int // market supply in want
	Price  *big.Int // want per 1e18 reward tokens

	// Error, when set, is returned from every call
	Error error
	// Func, when set, replaces the reward curve
	Func func(change *big.Int, add bool) (*big.Int, error)

	Calls []Call
	mu    sync.Mutex
}

// NewMockSource returns a source with the scrDAI genesis curve: 0.05 SCREAM
// per block over 49.9M DAI supplied, SCREAM priced at 2 DAI.
func NewMockSource() *MockSource {
	return &MockSource{
		Speed:  new(big.Int).Div(wad, big.NewInt(20)),
		Supply: Units(49_900_000),
		Price:  new(big.Int).Mul(big.NewInt(2), wad),
	}
}

// Units converts a whole token amount to 18-decimal base units
func Units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), wad)
}

func (m *MockSource) CompBlockShareInWant(ctx context.Context, change *big.Int, add bool) (*big.Int, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Change: new(big.Int).Set(change), Add: add})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Error != nil {
		return nil, m.Error
	}
	if m.Func != nil {
		return m.Func(change, add)
	}

	total := new(big.Int).Set(m.Supply)
	if add {
		total.Add(total, change)
	} else {
		total.Sub(total, change)
		if total.Sign() < 0 {
			return nil, fmt.Errorf("SafeMath: subtraction overflow")
		}
	}
	if total.Sign() == 0 {
		return new(big.Int), nil
	}

	share := new(big.Int).Mul(m.Speed, wad)
	share.Div(share, total)
	share.Mul(share, m.Price)
	share.Div(share, wad)
	share.Mul(share, big.NewInt(9))
	return share.Div(share, big.NewInt(10)), nil
}

// CallCount returns the number of recorded calls
func (m *MockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
