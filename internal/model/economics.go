package model

import "math/big"

// PoolSnapshot is the raw pool state the economics functions consume.
// Amounts are integer token-decimal-scaled values as read from chain.
type PoolSnapshot struct {
	FeeBasisPoints      uint64   `json:"fee_basis_points"`
	DepositedCollateral *big.Int `json:"deposited_collateral"`
	AccruedFees         *big.Int `json:"accrued_fees"`
	AccrualPeriodDays   int64    `json:"accrual_period_days"`
	EffectiveRate       string   `json:"effective_rate"`
	Volume              string   `json:"volume"`
}

// PoolEconomics is a derived, display-only projection. The core never
// mutates it and never uses it for on-chain execution.
type PoolEconomics struct {
	FeePct      string `json:"fee_pct"`
	APY         string `json:"apy"`
	DiscountPct string `json:"discount_pct"`
	Volume      string `json:"volume"`
}
