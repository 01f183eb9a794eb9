package simchain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"genlender/chain"
)

// Comptroller holds per-market reward speeds and the price of the reward token
// in each want token. Prices stand in for the DEX route the plugin quotes through.
type Comptroller struct {
	base
	mu          sync.RWMutex
	admin       common.Address
	rewardToken common.Address
	speeds      map[common.Address]*big.Int
	prices      map[common.Address]*big.Int
}

var _ chain.Comptroller = (*Comptroller)(nil)

func newComptroller(b base, admin, rewardToken common.Address) *Comptroller {
	return &Comptroller{
		base:        b,
		admin:       admin,
		rewardToken: rewardToken,
		speeds:      make(map[common.Address]*big.Int),
		prices:      make(map[common.Address]*big.Int),
	}
}

// deployComptroller takes (rewardToken); the deployer becomes admin
func deployComptroller(c *Chain, d deployment, args []any) (chain.Contract, error) {
	if err := wantArgs(args, 1); err != nil {
		return nil, err
	}
	reward, err := argAddress(args, 0)
	if err != nil {
		return nil, err
	}
	return newComptroller(d.base(), d.from, reward), nil
}

func (ct *Comptroller) Admin(ctx context.Context) (common.Address, error) {
	return ct.admin, nil
}

func (ct *Comptroller) RewardToken(ctx context.Context) (common.Address, error) {
	return ct.rewardToken, nil
}

func (ct *Comptroller) CompSpeeds(ctx context.Context, market common.Address) (*big.Int, error) {
	return ct.speed(market), nil
}

func (ct *Comptroller) RewardPrice(ctx context.Context, want common.Address) (*big.Int, error) {
	return ct.price(want)
}

func (ct *Comptroller) SetCompSpeed(ctx context.Context, from, market common.Address, speed *big.Int) error {
	if from != ct.admin {
		return revert("only admin can set comp speed")
	}
	if speed == nil || speed.Sign() < 0 {
		return revert("invalid speed")
	}
	ct.mu.Lock()
	ct.speeds[market] = new(big.Int).Set(speed)
	ct.mu.Unlock()
	return nil
}

func (ct *Comptroller) SetRewardPrice(ctx context.Context, from, want common.Address, price *big.Int) error {
	if from != ct.admin {
		return revert("only admin can set price")
	}
	if price == nil || price.Sign() < 0 {
		return revert("invalid price")
	}
	ct.mu.Lock()
	ct.prices[want] = new(big.Int).Set(price)
	ct.mu.Unlock()
	return nil
}

func (ct *Comptroller) speed(market common.Address) *big.Int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	if s, ok := ct.speeds[market]; ok {
		return new(big.Int).Set(s)
	}
	return new(big.Int)
}

// quote converts a reward amount to want
func (ct *Comptroller) quote(want common.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int), nil
	}
	price, err := ct.price(want)
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(amount, price)
	return out.Div(out, wad), nil
}

func (ct *Comptroller) price(want common.Address) (*big.Int, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	p, ok := ct.prices[want]
	if !ok {
		return nil, revert("no reward route for want")
	}
	return new(big.Int).Set(p), nil
}
