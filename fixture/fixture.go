// Package fixture builds the generic lender test fixtures on a chain.Harness:
// the Fantom tokens and Scream markets, the named accounts, a fresh vault and a
// strategy with one Scream lender plugin whose reward rate has been checked.
//
// Every fixture takes its addresses and account indices from an explicit
// shared.Config.
package fixture

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"genlender/chain"
	"genlender/rate"
	"genlender/shared"
)

// Fixtures is the full fixture set for one session
type Fixtures struct {
	SessionID uuid.UUID

	FtmDAI  chain.Token
	FtmUSDC chain.Token
	ScrDAI  chain.Market
	ScrUSDC chain.Market

	Gov        chain.Account
	Whale      chain.Account
	Rewards    chain.Account
	Guardian   chain.Account
	Strategist chain.Account
	Keeper     chain.Account

	VaultTemplate string
	Vault         chain.Vault
	// LiveStrategy is nil when no live strategy address is configured
	LiveStrategy chain.Strategy

	Strategy *StrategyFixture
}

// StrategyFixture is a deployed strategy with its checked lender plugin
type StrategyFixture struct {
	Strategy chain.Strategy
	Plugin   chain.LenderPlugin
	// Report holds the baseline and projected reward rates
	Report *rate.Report
	// LendingRate is the plugin APR less the baseline reward rate
	LendingRate *rate.AnnualizedRate
}

type options struct {
	logger  *zap.Logger
	metrics *rate.Metrics
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithMetrics(m *rate.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// =============================================================================
// Tokens and markets
// =============================================================================

func FtmDAI(h chain.Harness, cfg *shared.Config) (chain.Token, error) {
	return chain.Bind[chain.Token](h.At(chain.TemplateERC20, common.HexToAddress(cfg.DAIAddress)))
}

func FtmUSDC(h chain.Harness, cfg *shared.Config) (chain.Token, error) {
	return chain.Bind[chain.Token](h.At(chain.TemplateERC20, common.HexToAddress(cfg.USDCAddress)))
}

func ScrDAI(h chain.Harness, cfg *shared.Config) (chain.Market, error) {
	return chain.Bind[chain.Market](h.At(chain.TemplateMarket, common.HexToAddress(cfg.ScrDAIAddress)))
}

func ScrUSDC(h chain.Harness, cfg *shared.Config) (chain.Market, error) {
	return chain.Bind[chain.Market](h.At(chain.TemplateMarket, common.HexToAddress(cfg.ScrUSDCAddress)))
}

// =============================================================================
// Accounts
// =============================================================================

func Gov(h chain.Harness, cfg *shared.Config) (chain.Account, error) {
	return h.Account(cfg.GovIndex)
}

// Whale is the DAI holder, impersonated
func Whale(h chain.Harness, cfg *shared.Config) (chain.Account, error) {
	return h.AccountAt(common.HexToAddress(cfg.WhaleAddress), true)
}

// Rewards is the governance account
func Rewards(h chain.Harness, cfg *shared.Config) (chain.Account, error) {
	return Gov(h, cfg)
}

func Guardian(h chain.Harness, cfg *shared.Config) (chain.Account, error) {
	return h.Account(cfg.GuardianIndex)
}

func Strategist(h chain.Harness, cfg *shared.Config) (chain.Account, error) {
	return h.Account(cfg.StrategistIndex)
}

func Keeper(h chain.Harness, cfg *shared.Config) (chain.Account, error) {
	return h.Account(cfg.KeeperIndex)
}

// =============================================================================
// Vault and strategies
// =============================================================================

// VaultTemplate resolves the Vault template from the first configured dependency
func VaultTemplate(h chain.Harness, cfg *shared.Config) (string, error) {
	dep, err := cfg.VaultDependency()
	if err != nil {
		return "", err
	}
	pkg, err := h.ResolveDependency(dep)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dep, err)
	}
	return pkg.Template(chain.ContractVault)
}

// Vault deploys a vault from guardian, initializes it for want with default
// name and symbol, and lifts the deposit limit to 2^256-1
func Vault(ctx context.Context, h chain.Harness, cfg *shared.Config, want chain.Token, gov, rewards, guardian chain.Account) (chain.Vault, error) {
	tmpl, err := VaultTemplate(h, cfg)
	if err != nil {
		return nil, err
	}
	vault, err := chain.Bind[chain.Vault](h.Deploy(ctx, guardian.Address, tmpl))
	if err != nil {
		return nil, err
	}
	if err := vault.Initialize(ctx, guardian.Address, want.Address(), gov.Address, rewards.Address, "", ""); err != nil {
		return nil, fmt.Errorf("initialize vault: %w", err)
	}
	if err := vault.SetDepositLimit(ctx, gov.Address, math.MaxBig256); err != nil {
		return nil, fmt.Errorf("set deposit limit: %w", err)
	}
	return vault, nil
}

// LiveStrategy binds the strategy already deployed at the configured address
func LiveStrategy(h chain.Harness, cfg *shared.Config) (chain.Strategy, error) {
	if cfg.LiveStrategyAddress == "" {
		return nil, fmt.Errorf("live strategy address not configured")
	}
	return chain.Bind[chain.Strategy](h.At(chain.TemplateStrategy, common.HexToAddress(cfg.LiveStrategyAddress)))
}

// StrategyDeps are the fixtures the strategy fixture is built from
type StrategyDeps struct {
	Strategist chain.Account
	Keeper     chain.Account
	Gov        chain.Account
	Vault      chain.Vault
	Market     chain.Market
}

// Strategy deploys a strategy on the vault and docks a fresh lender plugin on
// the market. Before the lender is added, the plugin must hold nothing and its
// reward rate must fall when the configured probe position is added.
func Strategy(ctx context.Context, h chain.Harness, cfg *shared.Config, deps StrategyDeps, opts ...Option) (*StrategyFixture, error) {
	o := buildOptions(opts)

	strategy, err := chain.Bind[chain.Strategy](h.Deploy(ctx, deps.Strategist.Address, chain.TemplateStrategy, deps.Vault.Address()))
	if err != nil {
		return nil, fmt.Errorf("deploy strategy: %w", err)
	}
	if err := strategy.SetKeeper(ctx, deps.Strategist.Address, deps.Keeper.Address); err != nil {
		return nil, fmt.Errorf("set keeper: %w", err)
	}

	plugin, err := chain.Bind[chain.LenderPlugin](h.Deploy(ctx, deps.Strategist.Address, chain.TemplateGenericScream,
		strategy.Address(), cfg.PluginName, deps.Market.Address()))
	if err != nil {
		return nil, fmt.Errorf("deploy lender plugin: %w", err)
	}

	stored, err := plugin.UnderlyingBalanceStored(ctx)
	if err != nil {
		return nil, rate.ErrSourceFailed(err)
	}
	if stored.Sign() != 0 {
		return nil, rate.ErrPreconditionFailed("fresh lender plugin holds %s underlying", stored)
	}

	estimator, err := rate.NewEstimator(plugin,
		rate.WithParams(rate.ParamsFromConfig(cfg)),
		rate.WithLogger(o.logger),
		rate.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}
	probe, err := cfg.ProbePositionUnits()
	if err != nil {
		return nil, rate.ErrPreconditionFailed("probe position: %v", err)
	}

	baseline, err := estimator.BaselineRate(ctx)
	if err != nil {
		return nil, err
	}
	apr, err := plugin.APR(ctx)
	if err != nil {
		return nil, rate.ErrSourceFailed(err)
	}
	lending := &rate.AnnualizedRate{
		Raw:      new(big.Int).Sub(apr, baseline.Raw),
		Decimals: cfg.Decimals,
	}
	o.logger.Info("Lender plugin rates",
		zap.String("plugin", plugin.Address().Hex()),
		zap.Stringer("reward_rate", baseline),
		zap.Stringer("lending_rate", lending),
	)

	report, err := estimator.CheckDiminishingReturns(ctx, probe)
	if err != nil {
		return nil, err
	}

	if err := strategy.AddLender(ctx, deps.Gov.Address, plugin.Address()); err != nil {
		return nil, fmt.Errorf("add lender: %w", err)
	}
	n, err := strategy.NumLenders(ctx)
	if err != nil {
		return nil, err
	}
	if n != 1 {
		return nil, rate.ErrPreconditionFailed("strategy has %d lenders, want 1", n)
	}

	return &StrategyFixture{
		Strategy:    strategy,
		Plugin:      plugin,
		Report:      report,
		LendingRate: lending,
	}, nil
}

// Setup builds every fixture in dependency order
func Setup(ctx context.Context, h chain.Harness, cfg *shared.Config, opts ...Option) (*Fixtures, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	o := buildOptions(opts)
	f := &Fixtures{SessionID: uuid.New()}
	logger := o.logger.With(zap.String("session", f.SessionID.String()))
	strategyOpts := append(append([]Option{}, opts...), WithLogger(logger))

	var err error
	if f.FtmDAI, err = FtmDAI(h, cfg); err != nil {
		return nil, fmt.Errorf("ftm_dai: %w", err)
	}
	if f.FtmUSDC, err = FtmUSDC(h, cfg); err != nil {
		return nil, fmt.Errorf("ftm_usdc: %w", err)
	}
	if f.ScrDAI, err = ScrDAI(h, cfg); err != nil {
		return nil, fmt.Errorf("scr_dai: %w", err)
	}
	if f.ScrUSDC, err = ScrUSDC(h, cfg); err != nil {
		return nil, fmt.Errorf("scr_usdc: %w", err)
	}

	if f.Gov, err = Gov(h, cfg); err != nil {
		return nil, fmt.Errorf("gov: %w", err)
	}
	if f.Whale, err = Whale(h, cfg); err != nil {
		return nil, fmt.Errorf("whale: %w", err)
	}
	if f.Rewards, err = Rewards(h, cfg); err != nil {
		return nil, fmt.Errorf("rewards: %w", err)
	}
	if f.Guardian, err = Guardian(h, cfg); err != nil {
		return nil, fmt.Errorf("guardian: %w", err)
	}
	if f.Strategist, err = Strategist(h, cfg); err != nil {
		return nil, fmt.Errorf("strategist: %w", err)
	}
	if f.Keeper, err = Keeper(h, cfg); err != nil {
		return nil, fmt.Errorf("keeper: %w", err)
	}

	if f.VaultTemplate, err = VaultTemplate(h, cfg); err != nil {
		return nil, fmt.Errorf("vault template: %w", err)
	}
	if f.Vault, err = Vault(ctx, h, cfg, f.FtmDAI, f.Gov, f.Rewards, f.Guardian); err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	if cfg.LiveStrategyAddress != "" {
		if f.LiveStrategy, err = LiveStrategy(h, cfg); err != nil {
			return nil, fmt.Errorf("live strategy: %w", err)
		}
	}

	f.Strategy, err = Strategy(ctx, h, cfg, StrategyDeps{
		Strategist: f.Strategist,
		Keeper:     f.Keeper,
		Gov:        f.Gov,
		Vault:      f.Vault,
		Market:     f.ScrDAI,
	}, strategyOpts...)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}

	logger.Info("Fixtures ready",
		zap.String("vault", f.Vault.Address().Hex()),
		zap.String("strategy", f.Strategy.Strategy.Address().Hex()),
		zap.String("plugin", f.Strategy.Plugin.Address().Hex()),
	)
	return f, nil
}
