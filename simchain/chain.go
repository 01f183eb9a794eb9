// Package simchain is an in-memory chain.Harness. It derives deterministic test
// accounts, assigns contract addresses the way the EVM does, and runs Go
// renditions of the token, market, vault and lender contracts the fixtures use.
package simchain

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"genlender/chain"
	"genlender/shared"
)

const DefaultAccountCount = 10

var defaultSeed = []byte("genlender test mnemonic")

// deployment describes the contract being constructed
type deployment struct {
	self     common.Address
	from     common.Address
	template string
}

func (d deployment) base() base {
	return base{address: d.self, template: d.template}
}

type constructor func(c *Chain, d deployment, args []any) (chain.Contract, error)

// Chain is the simulated harness
type Chain struct {
	mu        sync.RWMutex
	accounts  []chain.Account
	nonces    map[common.Address]uint64
	contracts map[common.Address]chain.Contract

	seed          []byte
	accountCount  int
	blocksPerYear *big.Int
	packages      *PackageManager
	logger        *zap.Logger
}

type Option func(*Chain)

func WithSeed(seed []byte) Option {
	return func(c *Chain) { c.seed = seed }
}

func WithAccountCount(n int) Option {
	return func(c *Chain) { c.accountCount = n }
}

// WithBlocksPerYear sets the chain's block rate used by interest models and plugins
func WithBlocksPerYear(n uint64) Option {
	return func(c *Chain) { c.blocksPerYear = new(big.Int).SetUint64(n) }
}

func WithPackageManager(pm *PackageManager) Option {
	return func(c *Chain) { c.packages = pm }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Chain) {
		if l != nil {
			c.logger = l
		}
	}
}

var _ chain.Harness = (*Chain)(nil)

// New creates an empty chain with derived test accounts
func New(opts ...Option) (*Chain, error) {
	c := &Chain{
		nonces:        make(map[common.Address]uint64),
		contracts:     make(map[common.Address]chain.Contract),
		seed:          defaultSeed,
		accountCount:  DefaultAccountCount,
		blocksPerYear: big.NewInt(shared.DefaultBlocksPerYear),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.accountCount <= 0 {
		return nil, fmt.Errorf("account count must be positive")
	}
	if c.blocksPerYear.Sign() <= 0 {
		return nil, fmt.Errorf("blocks per year must be positive")
	}
	if c.packages == nil {
		pm, err := NewPackageManager(c.logger)
		if err != nil {
			return nil, err
		}
		c.packages = pm
	}

	for i := 0; i < c.accountCount; i++ {
		key, err := DeriveKey(c.seed, i)
		if err != nil {
			return nil, fmt.Errorf("derive account %d: %w", i, err)
		}
		c.accounts = append(c.accounts, chain.Account{
			Address: crypto.PubkeyToAddress(key.PublicKey),
			Key:     key,
		})
	}
	return c, nil
}

// DeriveKey derives the private key of test account index as keccak256(seed || index)
func DeriveKey(seed []byte, index int) (*ecdsa.PrivateKey, error) {
	if index < 0 {
		return nil, fmt.Errorf("account index must be non-negative")
	}
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(index))
	return crypto.ToECDSA(crypto.Keccak256(seed, idx[:]))
}

// Accounts returns all derived test accounts
func (c *Chain) Accounts() []chain.Account {
	return append([]chain.Account(nil), c.accounts...)
}

func (c *Chain) Account(index int) (chain.Account, error) {
	if index < 0 || index >= len(c.accounts) {
		return chain.Account{}, fmt.Errorf("account index %d out of range [0, %d)", index, len(c.accounts))
	}
	return c.accounts[index], nil
}

func (c *Chain) AccountAt(addr common.Address, force bool) (chain.Account, error) {
	for _, a := range c.accounts {
		if a.Address == addr {
			return a, nil
		}
	}
	if !force {
		return chain.Account{}, fmt.Errorf("unknown account %s (use force to impersonate)", addr.Hex())
	}
	c.logger.Debug("Impersonating account", zap.String("address", addr.Hex()))
	return chain.Account{Address: addr, Impersonated: true}, nil
}

// Nonce returns the number of deployments made by addr
func (c *Chain) Nonce(addr common.Address) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nonces[addr]
}

func (c *Chain) Deploy(ctx context.Context, from common.Address, template string, args ...any) (chain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	canonical, ctor, err := c.constructorFor(template)
	if err != nil {
		return nil, err
	}

	// a failed deployment still consumes the nonce
	c.mu.Lock()
	nonce := c.nonces[from]
	c.nonces[from] = nonce + 1
	c.mu.Unlock()
	addr := crypto.CreateAddress(from, nonce)

	contract, err := ctor(c, deployment{self: addr, from: from, template: canonical}, args)
	if err != nil {
		return nil, fmt.Errorf("deploy %s: %w", canonical, err)
	}
	c.install(contract)

	c.logger.Debug("Contract deployed",
		zap.String("template", canonical),
		zap.String("address", addr.Hex()),
		zap.String("from", from.Hex()),
		zap.Uint64("nonce", nonce),
	)
	return contract, nil
}

func (c *Chain) At(template string, addr common.Address) (chain.Contract, error) {
	canonical, _, err := c.constructorFor(template)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	contract, ok := c.contracts[addr]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no contract at %s", addr.Hex())
	}
	_, want := chain.SplitTemplate(canonical)
	if _, got := chain.SplitTemplate(contract.Template()); got != want {
		return nil, fmt.Errorf("contract at %s is %s, not %s", addr.Hex(), contract.Template(), canonical)
	}
	return contract, nil
}

func (c *Chain) ResolveDependency(name string) (*chain.Package, error) {
	return c.packages.Resolve(name)
}

// BlocksPerYear returns the chain's block rate
func (c *Chain) BlocksPerYear() *big.Int {
	return new(big.Int).Set(c.blocksPerYear)
}

// Close releases the package cache
func (c *Chain) Close() {
	c.packages.Close()
}

func (c *Chain) install(contract chain.Contract) {
	c.mu.Lock()
	c.contracts[contract.Address()] = contract
	c.mu.Unlock()
}

func (c *Chain) constructorFor(template string) (string, constructor, error) {
	pkgID, contract := chain.SplitTemplate(template)
	if pkgID == "" {
		ctor, ok := baseTemplates[contract]
		if !ok {
			return "", nil, fmt.Errorf("unknown template %q", template)
		}
		return contract, ctor, nil
	}

	pkg, err := c.packages.Resolve(pkgID)
	if err != nil {
		return "", nil, err
	}
	canonical, err := pkg.Template(contract)
	if err != nil {
		return "", nil, err
	}
	ctor, ok := packageTemplates[contract]
	if !ok {
		return "", nil, fmt.Errorf("no implementation for %s", canonical)
	}
	return canonical, ctor, nil
}

var baseTemplates = map[string]constructor{
	chain.TemplateERC20:         deployERC20,
	chain.TemplateMarket:        deployMarket,
	chain.TemplateComptroller:   deployComptroller,
	chain.TemplateStrategy:      deployStrategy,
	chain.TemplateGenericScream: deployGenericScream,
}

var packageTemplates = map[string]constructor{
	chain.ContractVault: deployVault,
}

func lookup[T any](c *Chain, addr common.Address) (T, error) {
	var zero T
	c.mu.RLock()
	contract, ok := c.contracts[addr]
	c.mu.RUnlock()
	if !ok {
		return zero, revertf("no contract at %s", addr.Hex())
	}
	v, ok := contract.(T)
	if !ok {
		return zero, revertf("unexpected %s at %s", contract.Template(), addr.Hex())
	}
	return v, nil
}

type base struct {
	address  common.Address
	template string
}

func (b *base) Address() common.Address { return b.address }
func (b *base) Template() string        { return b.template }
