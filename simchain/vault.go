package simchain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"genlender/chain"
)

// Vault is a yearn vault shell: configuration and governance, no share accounting
type Vault struct {
	base
	ledger
	sim *Chain

	mu           sync.RWMutex
	initialized  bool
	token        *ERC20
	governance   common.Address
	guardian     common.Address
	management   common.Address
	rewards      common.Address
	name         string
	symbol       string
	decimals     uint8
	depositLimit *big.Int
}

var _ chain.Vault = (*Vault)(nil)

func deployVault(c *Chain, d deployment, args []any) (chain.Contract, error) {
	if err := wantArgs(args, 0); err != nil {
		return nil, err
	}
	return &Vault{
		base:         d.base(),
		ledger:       newLedger(),
		sim:          c,
		depositLimit: new(big.Int),
	}, nil
}

// Initialize configures the vault once. The caller becomes guardian. Empty name
// and symbol default to "<SYMBOL> yVault" and "yv<SYMBOL>".
func (v *Vault) Initialize(ctx context.Context, from, token, governance, rewards common.Address, name, symbol string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	want, err := lookup[*ERC20](v.sim, token)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.initialized {
		return revert("already initialized")
	}
	if name == "" {
		name = want.symbol + " yVault"
	}
	if symbol == "" {
		symbol = "yv" + want.symbol
	}
	v.initialized = true
	v.token = want
	v.governance = governance
	v.guardian = from
	v.management = governance
	v.rewards = rewards
	v.name = name
	v.symbol = symbol
	v.decimals = want.decimals
	return nil
}

func (v *Vault) SetDepositLimit(ctx context.Context, from common.Address, limit *big.Int) error {
	if limit == nil || limit.Sign() < 0 {
		return revert("invalid limit")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if from != v.governance || !v.initialized {
		return revert("!governance")
	}
	v.depositLimit = new(big.Int).Set(limit)
	return nil
}

func (v *Vault) DepositLimit(ctx context.Context) (*big.Int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return new(big.Int).Set(v.depositLimit), nil
}

func (v *Vault) Want(ctx context.Context) (common.Address, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.token == nil {
		return common.Address{}, nil
	}
	return v.token.Address(), nil
}

func (v *Vault) Governance(ctx context.Context) (common.Address, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.governance, nil
}

func (v *Vault) Guardian(ctx context.Context) (common.Address, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.guardian, nil
}

func (v *Vault) Management(ctx context.Context) (common.Address, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.management, nil
}

func (v *Vault) Rewards(ctx context.Context) (common.Address, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.rewards, nil
}

func (v *Vault) Name(ctx context.Context) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.name, nil
}

func (v *Vault) Symbol(ctx context.Context) (string, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.symbol, nil
}

func (v *Vault) Decimals(ctx context.Context) (uint8, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.decimals, nil
}

func (v *Vault) isGovernance(addr common.Address) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.initialized && addr == v.governance
}

func (v *Vault) wantToken() *ERC20 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.token
}
