package shared

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// org/repo@version, as accepted by the package manager
var validDependencyRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+@[A-Za-z0-9_.+-]+$`)

// IsValidAddress checks for a 0x-prefixed 20-byte hex address
func IsValidAddress(addr string) bool {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return false
	}
	return common.IsHexAddress(addr)
}

// ValidateAddress validates an address field
func ValidateAddress(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s required", field)
	}
	if !IsValidAddress(addr) {
		return fmt.Errorf("%s is not a valid address: %s", field, addr)
	}
	return nil
}

// ValidateDependency validates a package dependency name
func ValidateDependency(name string) error {
	if name == "" {
		return fmt.Errorf("dependency name required")
	}
	if !validDependencyRegex.MatchString(name) {
		return fmt.Errorf("invalid dependency %q: expected org/repo@version", name)
	}
	return nil
}

// SplitDependency splits org/repo@version into its package name and version
func SplitDependency(name string) (pkg string, version string, err error) {
	if err := ValidateDependency(name); err != nil {
		return "", "", err
	}
	at := strings.LastIndex(name, "@")
	return name[:at], name[at+1:], nil
}

// ValidatePosition validates a lending position in base units
func ValidatePosition(position *big.Int) error {
	if position == nil {
		return fmt.Errorf("position is nil")
	}
	if position.Sign() < 0 {
		return fmt.Errorf("position must be non-negative, got %s", position)
	}
	if position.BitLen() > 256 {
		return fmt.Errorf("position exceeds uint256 range")
	}
	return nil
}

// ParseTokenAmount converts a human-readable amount (e.g. "5000000" or "12.5")
// to base units with the given number of decimals
func ParseTokenAmount(amount string, decimals int32) (*big.Int, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount required")
	}
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("amount must be non-negative, got %s", amount)
	}
	scaled := d.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}
	units := scaled.BigInt()
	if err := ValidatePosition(units); err != nil {
		return nil, err
	}
	return units, nil
}

// FormatTokenAmount renders base units as a decimal string
func FormatTokenAmount(units *big.Int, decimals int32) string {
	if units == nil {
		return "0"
	}
	return decimal.NewFromBigInt(units, -decimals).String()
}
