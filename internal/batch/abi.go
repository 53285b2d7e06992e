package batch

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const accountABIJSON = `[
  {
    "inputs": [
      {"internalType": "address[]", "name": "targets", "type": "address[]"},
      {"internalType": "bytes[]", "name": "payloads", "type": "bytes[]"}
    ],
    "name": "executeBatch",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const erc20TransferABIJSON = `[
  {
    "inputs": [
      {"internalType": "address", "name": "to", "type": "address"},
      {"internalType": "uint256", "name": "amount", "type": "uint256"}
    ],
    "name": "transfer",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

var (
	accountABI     abi.ABI
	accountABIOnce sync.Once
	accountABIErr  error

	transferABI     abi.ABI
	transferABIOnce sync.Once
	transferABIErr  error
)

// AccountABI returns the smart account's batch execution interface.
func AccountABI() (abi.ABI, error) {
	accountABIOnce.Do(func() {
		accountABI, accountABIErr = abi.JSON(strings.NewReader(accountABIJSON))
	})
	return accountABI, accountABIErr
}

// TransferABI returns the ERC-20 value-transfer interface.
func TransferABI() (abi.ABI, error) {
	transferABIOnce.Do(func() {
		transferABI, transferABIErr = abi.JSON(strings.NewReader(erc20TransferABIJSON))
	})
	return transferABI, transferABIErr
}

// ExecuteBatchSelector returns the 4-byte selector of the account's
// executeBatch calling convention.
func ExecuteBatchSelector() ([4]byte, error) {
	var selector [4]byte
	parsed, err := AccountABI()
	if err != nil {
		return selector, err
	}
	copy(selector[:], parsed.Methods["executeBatch"].ID)
	return selector, nil
}
