package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BasisPointDenominator converts basis points into a fraction of the amount.
const BasisPointDenominator = 10000

// PoolConfig is a sponsoring pool's on-chain configuration, fetched fresh per
// validation attempt. Collateral and fee parameters are mutable chain state,
// so a PoolConfig must never be reused across transfer attempts.
type PoolConfig struct {
	PoolAddress         common.Address `json:"pool_address"`
	TokenAddress        common.Address `json:"token_address"`
	FeeBasisPoints      uint64         `json:"fee_basis_points"`
	MinTransferAmount   *big.Int       `json:"min_transfer_amount"`
	DepositedCollateral *big.Int       `json:"deposited_collateral"`
	RuntimeCodeHash     common.Hash    `json:"runtime_code_hash"`
}

// CheckInvariants verifies the structural bounds of a fetched config.
func (p PoolConfig) CheckInvariants() error {
	if p.FeeBasisPoints > BasisPointDenominator {
		return fmt.Errorf("fee basis points out of range: %d", p.FeeBasisPoints)
	}
	if p.MinTransferAmount == nil || p.MinTransferAmount.Sign() <= 0 {
		return fmt.Errorf("min transfer amount must be positive")
	}
	return nil
}
