package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddress converts a required hex address string into a common.Address.
func ParseAddress(name, input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("%s address is required", name)
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid %s address: %s", name, input)
	}
	return common.HexToAddress(input), nil
}

// ParseSelector converts a 4-byte hex selector string.
func ParseSelector(input string) ([4]byte, error) {
	var selector [4]byte
	data, err := hexutil.Decode(strings.TrimSpace(input))
	if err != nil {
		return selector, fmt.Errorf("invalid selector: %s", input)
	}
	if len(data) != 4 {
		return selector, fmt.Errorf("invalid selector length: %s", input)
	}
	copy(selector[:], data)
	return selector, nil
}

// ParseAmount converts a base-10 integer amount in token-decimal-scaled units.
func ParseAmount(name, input string) (*big.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	value, ok := new(big.Int).SetString(input, 10)
	if !ok || value.Sign() < 0 {
		return nil, fmt.Errorf("invalid %s: %s", name, input)
	}
	return value, nil
}
