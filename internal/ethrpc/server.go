package ethrpc

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"genlender/chain"
)

// CallArgs is the eth_call transaction object
type CallArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

func (a CallArgs) data() []byte {
	if len(a.Input) > 0 {
		return a.Input
	}
	return a.Data
}

// EthService answers eth_call for lender plugins using the plugin ABI
type EthService struct {
	abi     abi.ABI
	mu      sync.RWMutex
	plugins map[common.Address]chain.LenderPlugin
}

// NewEthService creates a service answering for plugins
func NewEthService(plugins ...chain.LenderPlugin) (*EthService, error) {
	parsed, err := parsePluginABI()
	if err != nil {
		return nil, err
	}
	s := &EthService{abi: parsed, plugins: make(map[common.Address]chain.LenderPlugin)}
	for _, p := range plugins {
		s.add(p)
	}
	return s, nil
}

func (s *EthService) add(p chain.LenderPlugin) {
	s.mu.Lock()
	s.plugins[p.Address()] = p
	s.mu.Unlock()
}

// NewServer registers an EthService for plugins under the eth namespace
func NewServer(plugins ...chain.LenderPlugin) (*rpc.Server, error) {
	svc, err := NewEthService(plugins...)
	if err != nil {
		return nil, err
	}
	server := rpc.NewServer()
	if err := server.RegisterName("eth", svc); err != nil {
		return nil, fmt.Errorf("register eth service: %w", err)
	}
	return server, nil
}

// Call implements eth_call. Only the latest block is available.
func (s *EthService) Call(ctx context.Context, args CallArgs, block string) (hexutil.Bytes, error) {
	if block != "" && block != "latest" && block != "pending" {
		return nil, fmt.Errorf("historical state unavailable for block %s", block)
	}
	if args.To == nil {
		return nil, fmt.Errorf("missing call target")
	}
	s.mu.RLock()
	p, ok := s.plugins[*args.To]
	s.mu.RUnlock()
	if !ok {
		// calls to accounts without code return nothing
		return hexutil.Bytes{}, nil
	}

	input := args.data()
	if len(input) < 4 {
		return nil, fmt.Errorf("execution reverted")
	}
	method, err := s.abi.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: unknown selector %x", input[:4])
	}
	in, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %v", err)
	}

	var out any
	switch method.Name {
	case methodCompBlockShare:
		out, err = p.CompBlockShareInWant(ctx, in[0].(*big.Int), in[1].(bool))
	case methodUnderlying:
		out, err = p.UnderlyingBalanceStored(ctx)
	case methodAPR:
		out, err = p.APR(ctx)
	case methodAPRAfterDeposit:
		out, err = p.APRAfterDeposit(ctx, in[0].(*big.Int))
	case methodLenderName:
		out, err = p.LenderName(ctx)
	case methodStrategy:
		out, err = p.Strategy(ctx)
	default:
		return nil, fmt.Errorf("execution reverted: unsupported method %s", method.Name)
	}
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out)
}
