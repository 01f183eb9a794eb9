// Package chain abstracts the blockchain test harness the fixtures run against:
// accounts, contract deployment, binding to deployed addresses and package
// resolution. Implementations include the in-memory simchain.
package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account is a harness account. Impersonated accounts are bound by address
// only and hold no key.
type Account struct {
	Address      common.Address
	Key          *ecdsa.PrivateKey
	Impersonated bool
}

func (a Account) String() string {
	return a.Address.Hex()
}

// PrivateKeyHex returns the hex-encoded private key, or "" for impersonated accounts
func (a Account) PrivateKeyHex() string {
	if a.Key == nil {
		return ""
	}
	return hexutil.Encode(crypto.FromECDSA(a.Key))
}

// Sign signs a 32-byte hash with the account key
func (a Account) Sign(hash []byte) ([]byte, error) {
	if a.Key == nil {
		return nil, fmt.Errorf("account %s has no key", a.Address.Hex())
	}
	return crypto.Sign(hash, a.Key)
}

// Contract is a deployed contract instance
type Contract interface {
	Address() common.Address
	Template() string
}

// Harness is the external collaborator fixtures are built on
type Harness interface {
	// Account returns the test account at index
	Account(index int) (Account, error)
	// AccountAt binds an address. Unknown addresses need force.
	AccountAt(addr common.Address, force bool) (Account, error)
	// Deploy deploys template from the given sender
	Deploy(ctx context.Context, from common.Address, template string, args ...any) (Contract, error)
	// At binds an existing deployment of template at addr
	At(template string, addr common.Address) (Contract, error)
	// ResolveDependency resolves an org/repo@version package
	ResolveDependency(name string) (*Package, error)
}

// Bind casts a contract to the typed view T, passing err through.
//
//	vault, err := chain.Bind[chain.Vault](h.Deploy(ctx, guardian, tmpl))
func Bind[T any](c Contract, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if c == nil {
		return zero, fmt.Errorf("no contract to bind as %s", reflect.TypeOf((*T)(nil)).Elem())
	}
	v, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("%s at %s does not implement %s", c.Template(), c.Address().Hex(), reflect.TypeOf((*T)(nil)).Elem())
	}
	return v, nil
}
