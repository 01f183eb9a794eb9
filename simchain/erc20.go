package simchain

import (
	"context"

	"genlender/chain"
)

// ERC20 is a plain fungible token
type ERC20 struct {
	base
	ledger
	name     string
	symbol   string
	decimals uint8
}

var _ chain.Token = (*ERC20)(nil)

func newERC20(b base, name, symbol string, decimals uint8) *ERC20 {
	return &ERC20{
		base:     b,
		ledger:   newLedger(),
		name:     name,
		symbol:   symbol,
		decimals: decimals,
	}
}

// deployERC20 takes (name, symbol, decimals)
func deployERC20(c *Chain, d deployment, args []any) (chain.Contract, error) {
	if err := wantArgs(args, 3); err != nil {
		return nil, err
	}
	name, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	symbol, err := argString(args, 1)
	if err != nil {
		return nil, err
	}
	decimals, err := argUint8(args, 2)
	if err != nil {
		return nil, err
	}
	return newERC20(d.base(), name, symbol, decimals), nil
}

func (t *ERC20) Name(ctx context.Context) (string, error)    { return t.name, nil }
func (t *ERC20) Symbol(ctx context.Context) (string, error)  { return t.symbol, nil }
func (t *ERC20) Decimals(ctx context.Context) (uint8, error) { return t.decimals, nil }
