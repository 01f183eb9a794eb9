// Package ethrpc reads a deployed lender plugin over JSON-RPC so the rate
// estimator can run against a node or fork
package ethrpc

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"genlender/chain"
)

// ContractCaller executes eth_call. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Plugin is a lender plugin bound at an address. Calls are made once; failures
// are returned wrapped, never retried.
type Plugin struct {
	address common.Address
	caller  ContractCaller
	abi     abi.ABI
	client  *ethclient.Client
	logger  *zap.Logger
}

var _ chain.LenderReader = (*Plugin)(nil)

type Option func(*Plugin)

func WithLogger(l *zap.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// New binds the plugin at address through caller
func New(caller ContractCaller, address common.Address, opts ...Option) (*Plugin, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller cannot be nil")
	}
	parsed, err := parsePluginABI()
	if err != nil {
		return nil, fmt.Errorf("parse plugin abi: %w", err)
	}
	p := &Plugin{
		address: address,
		caller:  caller,
		abi:     parsed,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Dial connects to rawURL and binds the plugin at address
func Dial(ctx context.Context, rawURL string, address common.Address, opts ...Option) (*Plugin, error) {
	client, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	p, err := New(client, address, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	p.client = client
	return p, nil
}

// Close closes the connection opened by Dial
func (p *Plugin) Close() {
	if p.client != nil {
		p.client.Close()
	}
}

func (p *Plugin) Address() common.Address {
	return p.address
}

func (p *Plugin) CompBlockShareInWant(ctx context.Context, change *big.Int, add bool) (*big.Int, error) {
	return p.callUint(ctx, methodCompBlockShare, change, add)
}

func (p *Plugin) UnderlyingBalanceStored(ctx context.Context) (*big.Int, error) {
	return p.callUint(ctx, methodUnderlying)
}

func (p *Plugin) APR(ctx context.Context) (*big.Int, error) {
	return p.callUint(ctx, methodAPR)
}

func (p *Plugin) APRAfterDeposit(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return p.callUint(ctx, methodAPRAfterDeposit, amount)
}

func (p *Plugin) LenderName(ctx context.Context) (string, error) {
	out, err := p.call(ctx, methodLenderName)
	if err != nil {
		return "", err
	}
	name, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected output %T", methodLenderName, out[0])
	}
	return name, nil
}

func (p *Plugin) Strategy(ctx context.Context) (common.Address, error) {
	out, err := p.call(ctx, methodStrategy)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected output %T", methodStrategy, out[0])
	}
	return addr, nil
}

func (p *Plugin) callUint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	out, err := p.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output %T", method, out[0])
	}
	return v, nil
}

func (p *Plugin) call(ctx context.Context, method string, args ...any) ([]any, error) {
	input, err := p.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	to := p.address
	raw, err := p.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		p.logger.Debug("Plugin call failed",
			zap.String("plugin", p.address.Hex()),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	out, err := p.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty output", method)
	}
	return out, nil
}
