package simchain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"genlender/chain"
	"genlender/shared"
)

func wantArgs(args []any, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d constructor arguments, got %d", n, len(args))
	}
	return nil
}

func argAddress(args []any, i int) (common.Address, error) {
	switch v := args[i].(type) {
	case common.Address:
		return v, nil
	case chain.Contract:
		return v.Address(), nil
	case chain.Account:
		return v.Address, nil
	case string:
		if shared.IsValidAddress(v) {
			return common.HexToAddress(v), nil
		}
	}
	return common.Address{}, fmt.Errorf("argument %d: want address, got %T", i, args[i])
}

func argString(args []any, i int) (string, error) {
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: want string, got %T", i, args[i])
	}
	return s, nil
}

func argUint8(args []any, i int) (uint8, error) {
	switch v := args[i].(type) {
	case uint8:
		return v, nil
	case int:
		if v >= 0 && v <= 255 {
			return uint8(v), nil
		}
	}
	return 0, fmt.Errorf("argument %d: want uint8, got %v", i, args[i])
}

func argBig(args []any, i int) (*big.Int, error) {
	switch v := args[i].(type) {
	case *big.Int:
		if v != nil {
			return new(big.Int).Set(v), nil
		}
	case int64:
		return big.NewInt(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	}
	return nil, fmt.Errorf("argument %d: want integer, got %T", i, args[i])
}
