package simchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"genlender/chain"
)

// GenericScream lends a strategy's want to a Scream market and prices the
// market's reward stream in want
type GenericScream struct {
	base
	name          string
	strategy      *Strategy
	want          *ERC20
	market        *Market
	blocksPerYear *big.Int
}

var _ chain.LenderPlugin = (*GenericScream)(nil)

// deployGenericScream takes (strategy, name, cToken)
func deployGenericScream(c *Chain, d deployment, args []any) (chain.Contract, error) {
	if err := wantArgs(args, 3); err != nil {
		return nil, err
	}
	strategyAddr, err := argAddress(args, 0)
	if err != nil {
		return nil, err
	}
	name, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	marketAddr, err := argAddress(args, 2)
	if err != nil {
		return nil, err
	}

	strategy, err := lookup[*Strategy](c, strategyAddr)
	if err != nil {
		return nil, err
	}
	market, err := lookup[*Market](c, marketAddr)
	if err != nil {
		return nil, err
	}
	if market.underlying != strategy.want {
		return nil, revert("WRONG CTOKEN")
	}
	return &GenericScream{
		base:          d.base(),
		name:          name,
		strategy:      strategy,
		want:          strategy.want,
		market:        market,
		blocksPerYear: c.BlocksPerYear(),
	}, nil
}

func (g *GenericScream) LenderName(ctx context.Context) (string, error) {
	return g.name, nil
}

func (g *GenericScream) Strategy(ctx context.Context) (common.Address, error) {
	return g.strategy.Address(), nil
}

func (g *GenericScream) Want(ctx context.Context) (common.Address, error) {
	return g.want.Address(), nil
}

func (g *GenericScream) CToken(ctx context.Context) (common.Address, error) {
	return g.market.Address(), nil
}

// UnderlyingBalanceStored is the want value of the plugin's cTokens at the
// stored exchange rate
func (g *GenericScream) UnderlyingBalanceStored(ctx context.Context) (*big.Int, error) {
	held := g.market.balance(g.address)
	if held.Sign() == 0 {
		return held, nil
	}
	held.Mul(held, g.market.exchangeRate())
	return held.Div(held, wad), nil
}

// CompBlockShareInWant is the want value of the reward paid per block to each
// 1e18 of supply, after change is added to or taken from the market supply.
// The quote is cut by 10%.
func (g *GenericScream) CompBlockShareInWant(ctx context.Context, change *big.Int, add bool) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if change == nil || change.Sign() < 0 {
		return nil, revert("invalid change")
	}
	distribution := g.market.comptroller.speed(g.market.address)

	totalSupply := g.market.totalSupply()
	totalSupply.Mul(totalSupply, g.market.exchangeRate())
	totalSupply.Div(totalSupply, wad)
	if add {
		totalSupply.Add(totalSupply, change)
	} else {
		totalSupply.Sub(totalSupply, change)
		if totalSupply.Sign() < 0 {
			return nil, revert("SafeMath: subtraction overflow")
		}
	}

	blockShare := new(big.Int)
	if totalSupply.Sign() > 0 {
		blockShare.Mul(distribution, wad)
		blockShare.Div(blockShare, totalSupply)
	}

	estimated, err := g.market.comptroller.quote(g.want.Address(), blockShare)
	if err != nil {
		return nil, err
	}
	estimated.Mul(estimated, big.NewInt(9))
	return estimated.Div(estimated, big.NewInt(10)), nil
}

// APR is supply interest plus reward share, both per year
func (g *GenericScream) APR(ctx context.Context) (*big.Int, error) {
	return g.apr(ctx, new(big.Int))
}

// APRAfterDeposit projects the APR once amount more is supplied
func (g *GenericScream) APRAfterDeposit(ctx context.Context, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, revert("invalid amount")
	}
	return g.apr(ctx, amount)
}

func (g *GenericScream) apr(ctx context.Context, amount *big.Int) (*big.Int, error) {
	supply := g.market.supplyRate(amount)
	supply.Mul(supply, g.blocksPerYear)

	share, err := g.CompBlockShareInWant(ctx, amount, true)
	if err != nil {
		return nil, err
	}
	share.Mul(share, g.blocksPerYear)
	return supply.Add(supply, share), nil
}

// NAV is idle want plus supplied want
func (g *GenericScream) NAV(ctx context.Context) (*big.Int, error) {
	supplied, err := g.UnderlyingBalanceStored(ctx)
	if err != nil {
		return nil, err
	}
	return supplied.Add(supplied, g.want.balance(g.address)), nil
}

// Deposit supplies the plugin's idle want to the market. Strategy only.
func (g *GenericScream) Deposit(ctx context.Context, from common.Address) error {
	if from != g.strategy.Address() {
		return revert("!strategy")
	}
	idle := g.want.balance(g.address)
	if idle.Sign() == 0 {
		return nil
	}
	return g.market.Mint(ctx, g.address, idle)
}
