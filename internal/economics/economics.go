package economics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"sponsorFlow/internal/model"
)

// Pure, stateless reporting functions over a pool snapshot. These feed the
// display boundary and the validator's sanity checks; the core never executes
// rebalances from them.

const daysPerYear = 365

// FeePct converts basis points into a percentage.
func FeePct(feeBasisPoints uint64) decimal.Decimal {
	return decimal.NewFromUint64(feeBasisPoints).Div(decimal.NewFromInt(100))
}

// SponsorAPY estimates the sponsor's annualized yield from fees accrued over
// the deposited collateral during the snapshot's accrual period.
func SponsorAPY(snapshot model.PoolSnapshot) (decimal.Decimal, error) {
	if snapshot.DepositedCollateral == nil || snapshot.DepositedCollateral.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("deposited collateral must be positive")
	}
	if snapshot.AccruedFees == nil {
		return decimal.Zero, fmt.Errorf("accrued fees are required")
	}
	if snapshot.AccrualPeriodDays <= 0 {
		return decimal.Zero, fmt.Errorf("accrual period must be positive")
	}

	fees := decimal.NewFromBigInt(snapshot.AccruedFees, 0)
	collateral := decimal.NewFromBigInt(snapshot.DepositedCollateral, 0)
	periodYield := fees.Div(collateral)

	annualized := periodYield.
		Mul(decimal.NewFromInt(daysPerYear)).
		Div(decimal.NewFromInt(snapshot.AccrualPeriodDays))

	return annualized.Mul(decimal.NewFromInt(100)), nil
}

// DiscountPct is the signed percentage deviation of the pool's effective
// exchange rate from a reference market price. Negative means the pool sells
// the token below market, an arbitrage opportunity for rebalancers.
func DiscountPct(effectiveRate, referencePrice decimal.Decimal) (decimal.Decimal, error) {
	if referencePrice.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("reference price must be positive")
	}
	return effectiveRate.Sub(referencePrice).Div(referencePrice).Mul(decimal.NewFromInt(100)), nil
}

// RebalanceProfitEstimate is |discount| * volume / 100, scaled to the display
// currency. It is an approximation only: slippage and gas cost are not
// modeled, and it must never drive on-chain execution.
func RebalanceProfitEstimate(discountPct, volume decimal.Decimal) decimal.Decimal {
	return discountPct.Abs().Mul(volume).Div(decimal.NewFromInt(100))
}

// Project derives the display-only PoolEconomics view from a snapshot and a
// reference market price.
func Project(snapshot model.PoolSnapshot, referencePrice decimal.Decimal) (model.PoolEconomics, error) {
	effectiveRate, err := decimal.NewFromString(snapshot.EffectiveRate)
	if err != nil {
		return model.PoolEconomics{}, fmt.Errorf("parse effective rate: %w", err)
	}
	volume, err := decimal.NewFromString(snapshot.Volume)
	if err != nil {
		return model.PoolEconomics{}, fmt.Errorf("parse volume: %w", err)
	}

	apy, err := SponsorAPY(snapshot)
	if err != nil {
		return model.PoolEconomics{}, err
	}
	discount, err := DiscountPct(effectiveRate, referencePrice)
	if err != nil {
		return model.PoolEconomics{}, err
	}

	return model.PoolEconomics{
		FeePct:      FeePct(snapshot.FeeBasisPoints).String(),
		APY:         apy.String(),
		DiscountPct: discount.String(),
		Volume:      volume.String(),
	}, nil
}
