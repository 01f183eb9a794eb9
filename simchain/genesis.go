package simchain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"genlender/chain"
	"genlender/shared"
)

// TokenGenesis seeds an ERC20 at a fixed address
type TokenGenesis struct {
	Address  common.Address
	Name     string
	Symbol   string
	Decimals uint8
	Balances map[common.Address]*big.Int
}

// MarketGenesis seeds a market and its loan book. Supply is the cToken amount
// outstanding, held by Holder.
type MarketGenesis struct {
	Address     common.Address
	Name        string
	Symbol      string
	Underlying  common.Address
	Cash        *big.Int
	Borrows     *big.Int
	Reserves    *big.Int
	Supply      *big.Int
	Holder      common.Address
	RewardSpeed *big.Int
}

// StrategyGenesis seeds an already-running strategy with its own vault and one
// lender plugin on Market
type StrategyGenesis struct {
	Address    common.Address
	Want       common.Address
	Market     common.Address
	Governance common.Address
	PluginName string
	// VaultDependency is the package providing the strategy's vault
	VaultDependency string
}

// Genesis is the forked state the fixtures start from
type Genesis struct {
	// Admin administers the comptroller; zero means account 0
	Admin        common.Address
	Comptroller  common.Address
	RewardToken  TokenGenesis
	RewardPrices map[common.Address]*big.Int
	Tokens       []TokenGenesis
	Markets      []MarketGenesis
	Strategies   []StrategyGenesis
}

func units(n int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return scale.Mul(scale, big.NewInt(n))
}

// FantomGenesis approximates the Fantom state the original fixtures ran against:
// DAI and USDC Scream markets about 40% utilized, rewarded in SCREAM priced at
// 2 units of want.
func FantomGenesis(cfg *shared.Config) (*Genesis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	dai := common.HexToAddress(cfg.DAIAddress)
	usdc := common.HexToAddress(cfg.USDCAddress)
	whale := common.HexToAddress(cfg.WhaleAddress)
	scrDAI := common.HexToAddress(cfg.ScrDAIAddress)

	g := &Genesis{
		Comptroller: common.HexToAddress(cfg.UnitrollerAddress),
		RewardToken: TokenGenesis{
			Address:  common.HexToAddress(cfg.RewardTokenAddress),
			Name:     "Scream",
			Symbol:   "SCREAM",
			Decimals: 18,
		},
		RewardPrices: map[common.Address]*big.Int{
			dai:  units(2, 18),
			usdc: units(2, 6),
		},
		Tokens: []TokenGenesis{
			{
				Address:  dai,
				Name:     "Dai Stablecoin",
				Symbol:   "DAI",
				Decimals: 18,
				Balances: map[common.Address]*big.Int{whale: units(100_000_000, 18)},
			},
			{
				Address:  usdc,
				Name:     "USD Coin",
				Symbol:   "USDC",
				Decimals: 6,
				Balances: map[common.Address]*big.Int{whale: units(50_000_000, 6)},
			},
		},
		Markets: []MarketGenesis{
			{
				Address:     scrDAI,
				Name:        "Scream DAI",
				Symbol:      "scrDAI",
				Underlying:  dai,
				Cash:        units(30_000_000, 18),
				Borrows:     units(20_000_000, 18),
				Reserves:    units(100_000, 18),
				Supply:      units(48_900_000, marketDecimals),
				Holder:      whale,
				RewardSpeed: new(big.Int).Div(units(1, 18), big.NewInt(20)),
			},
			{
				Address:     common.HexToAddress(cfg.ScrUSDCAddress),
				Name:        "Scream USDC",
				Symbol:      "scrUSDC",
				Underlying:  usdc,
				Cash:        units(20_000_000, 6),
				Borrows:     units(15_000_000, 6),
				Reserves:    units(50_000, 6),
				Supply:      units(34_500_000, marketDecimals),
				Holder:      whale,
				RewardSpeed: new(big.Int).Div(units(3, 18), big.NewInt(100)),
			},
		},
	}

	if cfg.LiveStrategyAddress != "" {
		dep, err := cfg.VaultDependency()
		if err != nil {
			return nil, err
		}
		g.Strategies = append(g.Strategies, StrategyGenesis{
			Address:         common.HexToAddress(cfg.LiveStrategyAddress),
			Want:            dai,
			Market:          scrDAI,
			Governance:      whale,
			PluginName:      cfg.PluginName,
			VaultDependency: dep,
		})
	}
	return g, nil
}

// ApplyGenesis installs g's contracts at their fixed addresses
func (c *Chain) ApplyGenesis(g *Genesis) error {
	if g == nil {
		return fmt.Errorf("genesis is nil")
	}
	ctx := context.Background()
	admin := g.Admin
	if admin == (common.Address{}) {
		admin = c.accounts[0].Address
	}

	if err := c.checkFree(g.RewardToken.Address); err != nil {
		return err
	}
	c.installToken(g.RewardToken)
	for _, t := range g.Tokens {
		if err := c.checkFree(t.Address); err != nil {
			return err
		}
		c.installToken(t)
	}

	if err := c.checkFree(g.Comptroller); err != nil {
		return err
	}
	comptroller := newComptroller(base{address: g.Comptroller, template: chain.TemplateComptroller}, admin, g.RewardToken.Address)
	c.install(comptroller)
	for want, price := range g.RewardPrices {
		if err := comptroller.SetRewardPrice(ctx, admin, want, price); err != nil {
			return fmt.Errorf("reward price for %s: %w", want.Hex(), err)
		}
	}

	for _, mg := range g.Markets {
		if err := c.checkFree(mg.Address); err != nil {
			return err
		}
		underlying, err := lookup[*ERC20](c, mg.Underlying)
		if err != nil {
			return fmt.Errorf("market %s: %w", mg.Symbol, err)
		}
		m := newMarket(base{address: mg.Address, template: chain.TemplateMarket},
			underlying, comptroller, DefaultJumpRateModel(c.blocksPerYear), mg.Name, mg.Symbol)
		underlying.mint(mg.Address, mg.Cash)
		m.setLoans(mg.Borrows, mg.Reserves)
		m.mint(mg.Holder, mg.Supply)
		c.install(m)

		if mg.RewardSpeed != nil {
			if err := comptroller.SetCompSpeed(ctx, admin, mg.Address, mg.RewardSpeed); err != nil {
				return fmt.Errorf("market %s: %w", mg.Symbol, err)
			}
		}
	}

	for _, sg := range g.Strategies {
		if err := c.installStrategy(ctx, sg); err != nil {
			return fmt.Errorf("strategy %s: %w", sg.Address.Hex(), err)
		}
	}

	c.logger.Info("Genesis applied",
		zap.Int("tokens", len(g.Tokens)+1),
		zap.Int("markets", len(g.Markets)),
		zap.Int("strategies", len(g.Strategies)),
		zap.String("comptroller", g.Comptroller.Hex()),
	)
	return nil
}

// NewFork creates a chain seeded with FantomGenesis for cfg
func NewFork(cfg *shared.Config, opts ...Option) (*Chain, error) {
	g, err := FantomGenesis(cfg)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithBlocksPerYear(cfg.BlocksPerYear)}, opts...)
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyGenesis(g); err != nil {
		c.Close()
		return nil, fmt.Errorf("apply genesis: %w", err)
	}
	return c, nil
}

// Mint credits amount of token to addr
func (c *Chain) Mint(token, to common.Address, amount *big.Int) error {
	t, err := lookup[*ERC20](c, token)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid amount")
	}
	t.mint(to, amount)
	return nil
}

func (c *Chain) checkFree(addr common.Address) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if existing, ok := c.contracts[addr]; ok {
		return fmt.Errorf("address %s already holds %s", addr.Hex(), existing.Template())
	}
	return nil
}

func (c *Chain) installToken(tg TokenGenesis) {
	t := newERC20(base{address: tg.Address, template: chain.TemplateERC20}, tg.Name, tg.Symbol, tg.Decimals)
	for owner, amount := range tg.Balances {
		t.mint(owner, amount)
	}
	c.install(t)
}

// installStrategy places a strategy at a fixed address. Its vault and plugin
// are deployed from the strategy address.
func (c *Chain) installStrategy(ctx context.Context, sg StrategyGenesis) error {
	if err := c.checkFree(sg.Address); err != nil {
		return err
	}
	want, err := lookup[*ERC20](c, sg.Want)
	if err != nil {
		return err
	}

	vaultTemplate, err := c.vaultTemplate(sg.VaultDependency)
	if err != nil {
		return err
	}
	vaultContract, err := c.Deploy(ctx, sg.Address, vaultTemplate)
	if err != nil {
		return err
	}
	vault := vaultContract.(*Vault)
	if err := vault.Initialize(ctx, sg.Governance, want.Address(), sg.Governance, sg.Governance, "", ""); err != nil {
		return err
	}

	strategy, err := deployStrategy(c, deployment{self: sg.Address, from: sg.Governance, template: chain.TemplateStrategy}, []any{vault.Address()})
	if err != nil {
		return err
	}
	c.install(strategy)

	plugin, err := c.Deploy(ctx, sg.Address, chain.TemplateGenericScream, sg.Address, sg.PluginName, sg.Market)
	if err != nil {
		return err
	}
	return strategy.(*Strategy).AddLender(ctx, sg.Governance, plugin.Address())
}

func (c *Chain) vaultTemplate(dependency string) (string, error) {
	if dependency == "" {
		return "", fmt.Errorf("vault dependency required")
	}
	pkg, err := c.packages.Resolve(dependency)
	if err != nil {
		return "", err
	}
	return pkg.Template(chain.ContractVault)
}

// ContractAddress is the address a contract deployed by from at nonce receives
func ContractAddress(from common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(from, nonce)
}
