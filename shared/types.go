package shared

import (
	"fmt"
	"math/big"
)

// Config holds the fixture configuration. Every value the fixtures need is passed
// explicitly; nothing is looked up from process-wide state.
type Config struct {
	Network      string   `json:"network"`
	Dependencies []string `json:"dependencies"`

	// Token and market addresses bound from the forked chain
	DAIAddress          string `json:"dai_address"`
	USDCAddress         string `json:"usdc_address"`
	ScrDAIAddress       string `json:"scr_dai_address"`
	ScrUSDCAddress      string `json:"scr_usdc_address"`
	WhaleAddress        string `json:"whale_address"`
	LiveStrategyAddress string `json:"live_strategy_address,omitempty"`
	UnitrollerAddress   string `json:"unitroller_address"`
	RewardTokenAddress  string `json:"reward_token_address"`

	// Test account indices
	GovIndex        int `json:"gov_index"`
	GuardianIndex   int `json:"guardian_index"`
	StrategistIndex int `json:"strategist_index"`
	KeeperIndex     int `json:"keeper_index"`

	PluginName string `json:"plugin_name"`

	// Rate estimation parameters
	BlocksPerYear uint64 `json:"blocks_per_year"`
	Decimals      int32  `json:"decimals"`
	ProbePosition string `json:"probe_position"` // whole want tokens, e.g. "5000000"
}

// DefaultConfig returns the Fantom DAI configuration
func DefaultConfig() *Config {
	return &Config{
		Network:             NetworkFantom,
		Dependencies:        []string{DefaultVaultDependency},
		DAIAddress:          FtmDAIAddress,
		USDCAddress:         FtmUSDCAddress,
		ScrDAIAddress:       ScrDAIAddress,
		ScrUSDCAddress:      ScrUSDCAddress,
		WhaleAddress:        WhaleAddress,
		LiveStrategyAddress: LiveStrategyAddress,
		UnitrollerAddress:   UnitrollerAddress,
		RewardTokenAddress:  ScreamTokenAddress,
		GovIndex:            DefaultGovIndex,
		GuardianIndex:       DefaultGuardianIndex,
		StrategistIndex:     DefaultStrategistIndex,
		KeeperIndex:         DefaultKeeperIndex,
		PluginName:          DefaultPluginName,
		BlocksPerYear:       DefaultBlocksPerYear,
		Decimals:            DefaultDecimals,
		ProbePosition:       DefaultProbePosition,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Network == "" {
		return fmt.Errorf("network required")
	}
	if len(c.Dependencies) == 0 {
		return fmt.Errorf("dependencies required: at least one package must be listed")
	}
	for i, dep := range c.Dependencies {
		if err := ValidateDependency(dep); err != nil {
			return fmt.Errorf("dependency at index %d: %w", i, err)
		}
	}

	addresses := []struct {
		field string
		value string
	}{
		{"dai_address", c.DAIAddress},
		{"usdc_address", c.USDCAddress},
		{"scr_dai_address", c.ScrDAIAddress},
		{"scr_usdc_address", c.ScrUSDCAddress},
		{"whale_address", c.WhaleAddress},
		{"unitroller_address", c.UnitrollerAddress},
		{"reward_token_address", c.RewardTokenAddress},
	}
	for _, a := range addresses {
		if err := ValidateAddress(a.field, a.value); err != nil {
			return err
		}
	}
	if c.LiveStrategyAddress != "" {
		if err := ValidateAddress("live_strategy_address", c.LiveStrategyAddress); err != nil {
			return err
		}
	}

	indices := []struct {
		field string
		value int
	}{
		{"gov_index", c.GovIndex},
		{"guardian_index", c.GuardianIndex},
		{"strategist_index", c.StrategistIndex},
		{"keeper_index", c.KeeperIndex},
	}
	for _, idx := range indices {
		if idx.value < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", idx.field, idx.value)
		}
	}

	if c.PluginName == "" {
		return fmt.Errorf("plugin_name required")
	}
	if c.BlocksPerYear == 0 {
		return fmt.Errorf("blocks_per_year must be positive")
	}
	if c.Decimals < 0 || c.Decimals > MaxDecimals {
		return fmt.Errorf("decimals must be between 0 and %d, got %d", MaxDecimals, c.Decimals)
	}

	probe, err := c.ProbePositionUnits()
	if err != nil {
		return fmt.Errorf("probe_position: %w", err)
	}
	if probe.Sign() == 0 {
		return fmt.Errorf("probe_position must be positive")
	}
	return nil
}

// ProbePositionUnits returns the probe position in base units (ProbePosition * 10^Decimals)
func (c *Config) ProbePositionUnits() (*big.Int, error) {
	return ParseTokenAmount(c.ProbePosition, c.Decimals)
}

// VaultDependency returns the package providing the Vault template
func (c *Config) VaultDependency() (string, error) {
	if len(c.Dependencies) == 0 {
		return "", fmt.Errorf("no dependencies configured")
	}
	return c.Dependencies[0], nil
}
