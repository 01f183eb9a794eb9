package simchain

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ledger is an ERC20 balance book
type ledger struct {
	lmu      sync.RWMutex
	balances map[common.Address]*big.Int
	supply   *big.Int
}

func newLedger() ledger {
	return ledger{
		balances: make(map[common.Address]*big.Int),
		supply:   new(big.Int),
	}
}

func (l *ledger) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return l.balance(owner), nil
}

func (l *ledger) TotalSupply(ctx context.Context) (*big.Int, error) {
	return l.totalSupply(), nil
}

func (l *ledger) Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.move(from, to, amount)
}

func (l *ledger) balance(owner common.Address) *big.Int {
	l.lmu.RLock()
	defer l.lmu.RUnlock()
	if b, ok := l.balances[owner]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *ledger) totalSupply() *big.Int {
	l.lmu.RLock()
	defer l.lmu.RUnlock()
	return new(big.Int).Set(l.supply)
}

func (l *ledger) mint(to common.Address, amount *big.Int) {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	l.credit(to, amount)
	l.supply.Add(l.supply, amount)
}

func (l *ledger) burn(from common.Address, amount *big.Int) error {
	l.lmu.Lock()
	defer l.lmu.Unlock()
	if err := l.debit(from, amount, "ERC20: burn amount exceeds balance"); err != nil {
		return err
	}
	l.supply.Sub(l.supply, amount)
	return nil
}

func (l *ledger) move(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return revert("ERC20: invalid amount")
	}
	l.lmu.Lock()
	defer l.lmu.Unlock()
	if err := l.debit(from, amount, "ERC20: transfer amount exceeds balance"); err != nil {
		return err
	}
	l.credit(to, amount)
	return nil
}

func (l *ledger) credit(owner common.Address, amount *big.Int) {
	b, ok := l.balances[owner]
	if !ok {
		b = new(big.Int)
		l.balances[owner] = b
	}
	b.Add(b, amount)
}

func (l *ledger) debit(owner common.Address, amount *big.Int, reason string) error {
	b, ok := l.balances[owner]
	if !ok || b.Cmp(amount) < 0 {
		if amount.Sign() == 0 {
			return nil
		}
		return revert(reason)
	}
	b.Sub(b, amount)
	return nil
}
