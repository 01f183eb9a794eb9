package shared

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"
)

// =============================================================================
// Config Validation Tests
// =============================================================================

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v, want nil", err)
	}
	if cfg.BlocksPerYear != 31_540_000 {
		t.Errorf("BlocksPerYear = %d, want 31540000", cfg.BlocksPerYear)
	}
	if cfg.Decimals != 18 {
		t.Errorf("Decimals = %d, want 18", cfg.Decimals)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{"valid default", func(c *Config) {}, false, ""},
		{"no live strategy", func(c *Config) { c.LiveStrategyAddress = "" }, false, ""},
		{"empty network", func(c *Config) { c.Network = "" }, true, "network required"},
		{"no dependencies", func(c *Config) { c.Dependencies = nil }, true, "dependencies required"},
		{"bad dependency", func(c *Config) { c.Dependencies = []string{"yearn-vaults"} }, true, "dependency at index 0"},
		{"empty dai", func(c *Config) { c.DAIAddress = "" }, true, "dai_address required"},
		{"bad whale", func(c *Config) { c.WhaleAddress = "0x1234" }, true, "whale_address is not a valid address"},
		{"bad live strategy", func(c *Config) { c.LiveStrategyAddress = "nope" }, true, "live_strategy_address"},
		{"negative gov index", func(c *Config) { c.GovIndex = -1 }, true, "gov_index must be non-negative"},
		{"empty plugin name", func(c *Config) { c.PluginName = "" }, true, "plugin_name required"},
		{"zero blocks per year", func(c *Config) { c.BlocksPerYear = 0 }, true, "blocks_per_year must be positive"},
		{"decimals too large", func(c *Config) { c.Decimals = MaxDecimals + 1 }, true, "decimals must be between"},
		{"zero probe", func(c *Config) { c.ProbePosition = "0" }, true, "probe_position must be positive"},
		{"negative probe", func(c *Config) { c.ProbePosition = "-5" }, true, "probe_position"},
		{"garbage probe", func(c *Config) { c.ProbePosition = "lots" }, true, "probe_position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Config.Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestConfigValidateNil(t *testing.T) {
	var cfg *Config
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "config is nil") {
		t.Errorf("nil Config.Validate() = %v, want 'config is nil'", err)
	}
}

func TestConfigJSON(t *testing.T) {
	data := []byte(`{
		"network": "ftm-fork",
		"dependencies": ["yearn/yearn-vaults@0.4.5"],
		"blocks_per_year": 2102400,
		"probe_position": "250000.5"
	}`)

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		t.Fatalf("Failed to unmarshal config: %v", err)
	}

	if cfg.Network != "ftm-fork" {
		t.Errorf("Network = %s, want ftm-fork", cfg.Network)
	}
	if cfg.BlocksPerYear != 2102400 {
		t.Errorf("BlocksPerYear = %d, want 2102400", cfg.BlocksPerYear)
	}
	// Unset fields keep their defaults
	if cfg.DAIAddress != FtmDAIAddress {
		t.Errorf("DAIAddress = %s, want default %s", cfg.DAIAddress, FtmDAIAddress)
	}

	units, err := cfg.ProbePositionUnits()
	if err != nil {
		t.Fatalf("ProbePositionUnits() error = %v", err)
	}
	want, _ := new(big.Int).SetString("250000500000000000000000", 10)
	if units.Cmp(want) != 0 {
		t.Errorf("ProbePositionUnits() = %s, want %s", units, want)
	}
}

func TestVaultDependency(t *testing.T) {
	cfg := DefaultConfig()
	dep, err := cfg.VaultDependency()
	if err != nil {
		t.Fatalf("VaultDependency() error = %v", err)
	}
	if dep != DefaultVaultDependency {
		t.Errorf("VaultDependency() = %s, want %s", dep, DefaultVaultDependency)
	}

	cfg.Dependencies = nil
	if _, err := cfg.VaultDependency(); err == nil {
		t.Error("VaultDependency() with no dependencies should fail")
	}
}

// =============================================================================
// Environment Override Tests
// =============================================================================

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvNetwork:       "ftm-fork",
		EnvDependencies:  "yearn/yearn-vaults@0.4.5, yearn/brownie-strategy-mix@1.0.0",
		EnvBlocksPerYear: "15768000",
		EnvProbePosition: "100",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Network != "ftm-fork" {
		t.Errorf("Network = %s, want ftm-fork", cfg.Network)
	}
	if len(cfg.Dependencies) != 2 || cfg.Dependencies[1] != "yearn/brownie-strategy-mix@1.0.0" {
		t.Errorf("Dependencies = %v", cfg.Dependencies)
	}
	if cfg.BlocksPerYear != 15768000 {
		t.Errorf("BlocksPerYear = %d, want 15768000", cfg.BlocksPerYear)
	}
	if cfg.ProbePosition != "100" {
		t.Errorf("ProbePosition = %s, want 100", cfg.ProbePosition)
	}
}

func TestApplyEnvInvalidBlocksPerYear(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == EnvBlocksPerYear {
			return "many", true
		}
		return "", false
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Error("ApplyEnv() should reject a non-numeric blocks per year")
	}
}
