package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Base contract templates available without a package
const (
	TemplateERC20         = "ERC20"
	TemplateMarket        = "CErc20I"
	TemplateComptroller   = "Comptroller"
	TemplateStrategy      = "Strategy"
	TemplateGenericScream = "GenericScream"
)

// Contracts provided by the vaults package
const (
	ContractVault = "Vault"
)

type Token interface {
	Contract
	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	Decimals(ctx context.Context) (uint8, error)
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	Transfer(ctx context.Context, from, to common.Address, amount *big.Int) error
}

// Market is a Compound-style cToken market
type Market interface {
	Token
	Underlying(ctx context.Context) (common.Address, error)
	Comptroller(ctx context.Context) (common.Address, error)
	GetCash(ctx context.Context) (*big.Int, error)
	TotalBorrows(ctx context.Context) (*big.Int, error)
	TotalReserves(ctx context.Context) (*big.Int, error)
	ExchangeRateStored(ctx context.Context) (*big.Int, error)
	SupplyRatePerBlock(ctx context.Context) (*big.Int, error)
	BorrowRatePerBlock(ctx context.Context) (*big.Int, error)
	// Mint supplies amount of underlying from the sender
	Mint(ctx context.Context, from common.Address, amount *big.Int) error
}

// Comptroller distributes the reward token across markets
type Comptroller interface {
	Contract
	RewardToken(ctx context.Context) (common.Address, error)
	CompSpeeds(ctx context.Context, market common.Address) (*big.Int, error)
	// RewardPrice is the want amount paid for 1e18 reward tokens
	RewardPrice(ctx context.Context, want common.Address) (*big.Int, error)
}

type Vault interface {
	Token
	Initialize(ctx context.Context, from, token, governance, rewards common.Address, name, symbol string) error
	SetDepositLimit(ctx context.Context, from common.Address, limit *big.Int) error
	DepositLimit(ctx context.Context) (*big.Int, error)
	Want(ctx context.Context) (common.Address, error)
	Governance(ctx context.Context) (common.Address, error)
	Guardian(ctx context.Context) (common.Address, error)
	Rewards(ctx context.Context) (common.Address, error)
}

// Strategy is a generic lender strategy spreading want across lender plugins
type Strategy interface {
	Contract
	Vault(ctx context.Context) (common.Address, error)
	Want(ctx context.Context) (common.Address, error)
	Strategist(ctx context.Context) (common.Address, error)
	Keeper(ctx context.Context) (common.Address, error)
	Rewards(ctx context.Context) (common.Address, error)
	SetKeeper(ctx context.Context, from, keeper common.Address) error
	AddLender(ctx context.Context, from, lender common.Address) error
	Lenders(ctx context.Context) ([]common.Address, error)
	NumLenders(ctx context.Context) (int, error)
}

// LenderReader is the read side of a lender plugin
type LenderReader interface {
	UnderlyingBalanceStored(ctx context.Context) (*big.Int, error)
	CompBlockShareInWant(ctx context.Context, change *big.Int, add bool) (*big.Int, error)
	APR(ctx context.Context) (*big.Int, error)
}

// LenderPlugin supplies a strategy's want to a single market
type LenderPlugin interface {
	Contract
	LenderReader
	LenderName(ctx context.Context) (string, error)
	Strategy(ctx context.Context) (common.Address, error)
	Want(ctx context.Context) (common.Address, error)
	CToken(ctx context.Context) (common.Address, error)
	APRAfterDeposit(ctx context.Context, amount *big.Int) (*big.Int, error)
	NAV(ctx context.Context) (*big.Int, error)
	// Deposit supplies the plugin's whole want balance to its market
	Deposit(ctx context.Context, from common.Address) error
}
