package ethrpc

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"genlender/chain"
	"genlender/rate"
)

var (
	pluginAddr   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	strategyAddr = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// fakePlugin spreads a fixed reward over a supply of 100 tokens
type fakePlugin struct {
	chain.LenderPlugin
	err   error
	mu    sync.Mutex
	calls []bool
}

func (f *fakePlugin) Address() common.Address { return pluginAddr }
func (f *fakePlugin) Template() string        { return chain.TemplateGenericScream }

func (f *fakePlugin) CompBlockShareInWant(ctx context.Context, change *big.Int, add bool) (*big.Int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, add)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	supply := new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	if add {
		supply.Add(supply, change)
	} else {
		supply.Sub(supply, change)
	}
	share := new(big.Int).Mul(big.NewInt(1e18), big.NewInt(1e9))
	return share.Div(share, supply), nil
}

func (f *fakePlugin) UnderlyingBalanceStored(ctx context.Context) (*big.Int, error) {
	return new(big.Int), nil
}

func (f *fakePlugin) APR(ctx context.Context) (*big.Int, error) {
	return big.NewInt(7e16), nil
}

func (f *fakePlugin) APRAfterDeposit(ctx context.Context, amount *big.Int) (*big.Int, error) {
	return big.NewInt(6e16), nil
}

func (f *fakePlugin) LenderName(ctx context.Context) (string, error) { return "Scream", nil }

func (f *fakePlugin) Strategy(ctx context.Context) (common.Address, error) { return strategyAddr, nil }

func dialFake(t *testing.T, fake *fakePlugin) *Plugin {
	t.Helper()
	server, err := NewServer(fake)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	client := ethclient.NewClient(rpc.DialInProc(server))
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})

	p, err := New(client, pluginAddr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

// =============================================================================
// Plugin Call Tests
// =============================================================================

func TestPluginReads(t *testing.T) {
	ctx := context.Background()
	fake := &fakePlugin{}
	p := dialFake(t, fake)

	if p.Address() != pluginAddr {
		t.Errorf("Address() = %s", p.Address().Hex())
	}

	share, err := p.CompBlockShareInWant(ctx, new(big.Int), false)
	if err != nil {
		t.Fatalf("CompBlockShareInWant() error = %v", err)
	}
	if share.Cmp(big.NewInt(1e7)) != 0 {
		t.Errorf("CompBlockShareInWant(0, false) = %s, want 10000000", share)
	}

	stored, err := p.UnderlyingBalanceStored(ctx)
	if err != nil || stored.Sign() != 0 {
		t.Errorf("UnderlyingBalanceStored() = %v, %v", stored, err)
	}
	apr, err := p.APR(ctx)
	if err != nil || apr.Cmp(big.NewInt(7e16)) != 0 {
		t.Errorf("APR() = %v, %v", apr, err)
	}
	after, err := p.APRAfterDeposit(ctx, big.NewInt(1))
	if err != nil || after.Cmp(big.NewInt(6e16)) != 0 {
		t.Errorf("APRAfterDeposit() = %v, %v", after, err)
	}
	name, err := p.LenderName(ctx)
	if err != nil || name != "Scream" {
		t.Errorf("LenderName() = %q, %v", name, err)
	}
	strategy, err := p.Strategy(ctx)
	if err != nil || strategy != strategyAddr {
		t.Errorf("Strategy() = %s, %v", strategy.Hex(), err)
	}
}

func TestPluginPassesArguments(t *testing.T) {
	fake := &fakePlugin{}
	p := dialFake(t, fake)

	change := new(big.Int).Mul(big.NewInt(100), big.NewInt(1e18))
	share, err := p.CompBlockShareInWant(context.Background(), change, true)
	if err != nil {
		t.Fatalf("CompBlockShareInWant() error = %v", err)
	}
	// supply doubles, share halves
	if share.Cmp(big.NewInt(5e6)) != 0 {
		t.Errorf("share = %s, want 5000000", share)
	}
	if len(fake.calls) != 1 || !fake.calls[0] {
		t.Errorf("calls = %v, want [true]", fake.calls)
	}
}

func TestPluginCallErrors(t *testing.T) {
	fake := &fakePlugin{err: errors.New("execution reverted: SafeMath: subtraction overflow")}
	p := dialFake(t, fake)

	_, err := p.CompBlockShareInWant(context.Background(), big.NewInt(1), false)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "call compBlockShareInWant") || !strings.Contains(err.Error(), "subtraction overflow") {
		t.Errorf("error = %v", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("plugin called %d times, want 1", len(fake.calls))
	}
}

func TestPluginWithoutCode(t *testing.T) {
	server, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.Stop()
	client := ethclient.NewClient(rpc.DialInProc(server))
	defer client.Close()

	p, err := New(client, pluginAddr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := p.APR(context.Background()); err == nil || !strings.Contains(err.Error(), "unpack apr") {
		t.Errorf("APR() error = %v, want unpack failure", err)
	}
}

type callerFunc func(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)

func (f callerFunc) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	return f(ctx, msg, block)
}

func TestPluginTargetsAddress(t *testing.T) {
	var got ethereum.CallMsg
	caller := callerFunc(func(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
		got = msg
		if block != nil {
			t.Errorf("block = %s, want latest", block)
		}
		return nil, errors.New("connection refused")
	})

	p, err := New(caller, pluginAddr)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := p.UnderlyingBalanceStored(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got.To == nil || *got.To != pluginAddr {
		t.Errorf("call target = %v, want %s", got.To, pluginAddr.Hex())
	}
	if len(got.Data) != 4 {
		t.Errorf("call data length = %d, want selector only", len(got.Data))
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, pluginAddr); err == nil {
		t.Error("New(nil) should fail")
	}
	if _, err := Dial(context.Background(), "ftp://localhost", pluginAddr); err == nil {
		t.Error("Dial() with unsupported scheme should fail")
	}
}

// =============================================================================
// Estimator Tests
// =============================================================================

func TestEstimatorOverRPC(t *testing.T) {
	p := dialFake(t, &fakePlugin{})

	e, err := rate.NewEstimator(p)
	if err != nil {
		t.Fatalf("NewEstimator() error = %v", err)
	}
	report, err := e.CheckDiminishingReturns(context.Background(), new(big.Int).Mul(big.NewInt(50), big.NewInt(1e18)))
	if err != nil {
		t.Fatalf("CheckDiminishingReturns() error = %v", err)
	}
	if report.Projected.Cmp(report.Baseline) >= 0 {
		t.Errorf("projected %s should be below baseline %s", report.Projected, report.Baseline)
	}
}

func TestEstimatorOverRPCSourceFailure(t *testing.T) {
	p := dialFake(t, &fakePlugin{err: errors.New("execution reverted")})

	e, err := rate.NewEstimator(p)
	if err != nil {
		t.Fatalf("NewEstimator() error = %v", err)
	}
	if _, err := e.BaselineRate(context.Background()); !errors.Is(err, rate.ErrSource) {
		t.Errorf("BaselineRate() error = %v, want source failure", err)
	}
}
