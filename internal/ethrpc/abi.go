package ethrpc

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// PluginABI is the read surface of a generic lender plugin
const PluginABI = `[
	{"type":"function","name":"compBlockShareInWant","stateMutability":"view",
	 "inputs":[{"name":"change","type":"uint256"},{"name":"add","type":"bool"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"underlyingBalanceStored","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"apr","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"aprAfterDeposit","stateMutability":"view",
	 "inputs":[{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"lenderName","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"strategy","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"address"}]}
]`

const (
	methodCompBlockShare  = "compBlockShareInWant"
	methodUnderlying      = "underlyingBalanceStored"
	methodAPR             = "apr"
	methodAPRAfterDeposit = "aprAfterDeposit"
	methodLenderName      = "lenderName"
	methodStrategy        = "strategy"
)

func parsePluginABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(PluginABI))
}
