// Package shared contains configuration, constants and validation shared by the
// estimator, the simulated harness and the fixtures
package shared

const (
	// Fixed-point base used by the lending contracts (1e18)
	DefaultDecimals = 18
	MaxDecimals     = 77 // 10^77 is the largest power of ten below 2^256

	// Blocks per year on Fantom (~1 second blocks). Used to annualize per-block rates.
	DefaultBlocksPerYear = 3154 * 10_000

	// Probe size for the diminishing-returns check, in whole want tokens
	DefaultProbePosition = "5000000"

	// Package providing the Vault template
	DefaultVaultDependency = "yearn/yearn-vaults@0.4.3"

	// Name given to the lender plugin on deployment
	DefaultPluginName = "Scream"

	NetworkFantom = "ftm-main"

	// Test account indices
	DefaultGuardianIndex   = 2
	DefaultStrategistIndex = 2
	DefaultGovIndex        = 3
	DefaultKeeperIndex     = 4

	// Fantom mainnet addresses
	FtmDAIAddress       = "0x8D11eC38a3EB5E956B052f67Da8Bdc9bef8Abf3E"
	FtmUSDCAddress      = "0x04068DA6C83AFCFA0e13ba15A6696662335D5B75"
	ScrUSDCAddress      = "0xE45Ac34E528907d0A0239ab5Db507688070B20bf"
	ScrDAIAddress       = "0x8D9AED9882b4953a0c9fa920168fa1FDfA0eBE75"
	WhaleAddress        = "0x96d66427C18e12Ec77B5bC195c9Bf1D6d01B204a"
	LiveStrategyAddress = "0x754133e0f67CB51263d6d5F41f2dF1a58a9D36b7"
	UnitrollerAddress   = "0x260E596DAbE3AFc463e75B6CC05d8c46aCAcFB09"
	ScreamTokenAddress  = "0xe0654C8e6fd4D733349ac7E09f6f23DA256bF475"

	// Environment overrides
	EnvNetwork       = "GENLENDER_NETWORK"
	EnvDependencies  = "GENLENDER_DEPENDENCIES"
	EnvBlocksPerYear = "GENLENDER_BLOCKS_PER_YEAR"
	EnvProbePosition = "GENLENDER_PROBE_POSITION"
	EnvRPCURL        = "GENLENDER_RPC_URL"
)
