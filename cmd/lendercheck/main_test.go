package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"genlender/fixture"
	"genlender/internal/ethrpc"
	"genlender/shared"
	"genlender/simchain"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

// =============================================================================
// Version Tests
// =============================================================================

func TestBuildInfo(t *testing.T) {
	info := BuildInfo()

	if !strings.Contains(info, Version) {
		t.Errorf("BuildInfo should contain Version, got: %s", info)
	}
	if !strings.Contains(info, GitCommit) {
		t.Errorf("BuildInfo should contain GitCommit, got: %s", info)
	}
	if !strings.Contains(info, BuildTime) {
		t.Errorf("BuildInfo should contain BuildTime, got: %s", info)
	}
	if !strings.HasPrefix(info, "lendercheck "+Version+" (") {
		t.Errorf("BuildInfo should start with the binary name and version, got: %s", info)
	}
	if !strings.HasSuffix(info, " with "+runtime.Version()) {
		t.Errorf("BuildInfo should end with the Go version, got: %s", info)
	}
}

func TestBuildInfoDefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if GitCommit == "" {
		t.Error("GitCommit should not be empty")
	}
	if BuildTime == "" {
		t.Error("BuildTime should not be empty")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version", "--config", "/nonexistent.json")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(out) != BuildInfo() {
		t.Errorf("output = %q", out)
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestCheckCommand(t *testing.T) {
	out, err := run(t, "check")
	if err != nil {
		t.Fatalf("check error = %v\n%s", err, out)
	}
	for _, want := range []string{"session", "vault", "plugin", "live strategy", "reward rate", "reward rate after deposit", "lending rate", "drop"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCheckCommandBadConfig(t *testing.T) {
	_, err := run(t, "check", "--config", "/nonexistent.json")
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Errorf("check error = %v, want read config failure", err)
	}
}

func TestAccountsCommand(t *testing.T) {
	out, err := run(t, "accounts")
	if err != nil {
		t.Fatalf("accounts error = %v", err)
	}
	for _, want := range []string{"guardian,strategist", "gov,rewards", "keeper", "whale (impersonated)", shared.WhaleAddress} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "\n") != simchain.DefaultAccountCount+1 {
		t.Errorf("want %d lines, got:\n%s", simchain.DefaultAccountCount+1, out)
	}
}

func TestRateCommandRequiresRPCURL(t *testing.T) {
	t.Setenv(shared.EnvRPCURL, "")
	_, err := run(t, "rate", "--plugin", shared.LiveStrategyAddress)
	if err == nil || !strings.Contains(err.Error(), "--rpc-url") {
		t.Errorf("rate error = %v", err)
	}
}

func TestRateCommandRejectsBadPlugin(t *testing.T) {
	_, err := run(t, "rate", "--rpc-url", "http://127.0.0.1:1", "--plugin", "scream")
	if err == nil || !strings.Contains(err.Error(), "plugin is not a valid address") {
		t.Errorf("rate error = %v", err)
	}
}

func TestRateCommandOverRPC(t *testing.T) {
	cfg := shared.DefaultConfig()
	fork, err := simchain.NewFork(cfg)
	if err != nil {
		t.Fatalf("NewFork() error = %v", err)
	}
	defer fork.Close()
	f, err := fixture.Setup(context.Background(), fork, cfg)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	server, err := ethrpc.NewServer(f.Strategy.Plugin)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	defer server.Stop()
	node := httptest.NewServer(server)
	defer node.Close()

	plugin := f.Strategy.Plugin.Address().Hex()
	out, err := run(t, "rate", "--rpc-url", node.URL, "--plugin", plugin, "--position", "5000000")
	if err != nil {
		t.Fatalf("rate error = %v\n%s", err, out)
	}
	if !strings.Contains(out, plugin) || !strings.Contains(out, "position") || !strings.Contains(out, "5000000") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "reward rate after deposit") {
		t.Errorf("output missing projected rate:\n%s", out)
	}
}
