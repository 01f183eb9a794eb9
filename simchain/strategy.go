package simchain

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"genlender/chain"
)

// Strategy is a generic lender strategy. It only tracks its roles and lenders;
// fund allocation is out of scope for the fixtures.
type Strategy struct {
	base
	sim   *Chain
	vault *Vault
	want  *ERC20

	mu         sync.RWMutex
	strategist common.Address
	keeper     common.Address
	rewards    common.Address
	lenders    []chain.LenderPlugin
}

var _ chain.Strategy = (*Strategy)(nil)

// deployStrategy takes (vault). The deployer becomes strategist, keeper and rewards.
func deployStrategy(c *Chain, d deployment, args []any) (chain.Contract, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	vaultAddr, err := argAddress(args, 0)
	if err != nil {
		return nil, err
	}
	vault, err := lookup[*Vault](c, vaultAddr)
	if err != nil {
		return nil, err
	}
	want := vault.wantToken()
	if want == nil {
		return nil, revert("vault not initialized")
	}
	return &Strategy{
		base:       d.base(),
		sim:        c,
		vault:      vault,
		want:       want,
		strategist: d.from,
		keeper:     d.from,
		rewards:    d.from,
	}, nil
}

func (s *Strategy) Vault(ctx context.Context) (common.Address, error) {
	return s.vault.Address(), nil
}

func (s *Strategy) Want(ctx context.Context) (common.Address, error) {
	return s.want.Address(), nil
}

func (s *Strategy) Strategist(ctx context.Context) (common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strategist, nil
}

func (s *Strategy) Keeper(ctx context.Context) (common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keeper, nil
}

func (s *Strategy) Rewards(ctx context.Context) (common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards, nil
}

func (s *Strategy) SetKeeper(ctx context.Context, from, keeper common.Address) error {
	if !s.authorized(from) {
		return revert("!authorized")
	}
	s.mu.Lock()
	s.keeper = keeper
	s.mu.Unlock()
	return nil
}

// AddLender registers a lender plugin docked to this strategy
func (s *Strategy) AddLender(ctx context.Context, from, lender common.Address) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.authorized(from) {
		return revert("!authorized")
	}
	plugin, err := lookup[chain.LenderPlugin](s.sim, lender)
	if err != nil {
		return err
	}
	docked, err := plugin.Strategy(ctx)
	if err != nil {
		return err
	}
	if docked != s.address {
		return revert("Undocked Lender")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lenders {
		if l.Address() == lender {
			return revert("Already Added")
		}
	}
	s.lenders = append(s.lenders, plugin)
	return nil
}

func (s *Strategy) Lenders(ctx context.Context) ([]common.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]common.Address, len(s.lenders))
	for i, l := range s.lenders {
		out[i] = l.Address()
	}
	return out, nil
}

func (s *Strategy) NumLenders(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lenders), nil
}

// authorized matches the strategist or vault governance
func (s *Strategy) authorized(from common.Address) bool {
	s.mu.RLock()
	strategist := s.strategist
	s.mu.RUnlock()
	return from == strategist || s.vault.isGovernance(from)
}
