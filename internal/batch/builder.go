package batch

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"sponsorFlow/internal/model"
)

// ErrSelectorMismatch means the encoded payload does not carry the pool's
// enforced batch-execute selector. This is a programming error, never a
// retryable condition.
var ErrSelectorMismatch = errors.New("batch payload selector does not match enforced selector")

// FeeSplit computes the sponsor fee with truncating integer division and the
// remainder that goes to the recipient. fee + remainder reconstructs amount
// exactly; no rounding loss vanishes or double-counts.
func FeeSplit(amount *big.Int, feeBasisPoints uint64) (*big.Int, *big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, nil, fmt.Errorf("amount must be non-negative")
	}
	if feeBasisPoints > model.BasisPointDenominator {
		return nil, nil, fmt.Errorf("fee basis points out of range: %d", feeBasisPoints)
	}

	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(feeBasisPoints))
	fee.Div(fee, big.NewInt(model.BasisPointDenominator))
	remainder := new(big.Int).Sub(amount, fee)
	return fee, remainder, nil
}

// Builder assembles the two-call batched operation a sponsored transfer
// executes atomically: fee payment to the collector first, then the primary
// transfer of the remainder to the recipient.
type Builder struct {
	feeCollector     common.Address
	enforcedSelector [4]byte
}

// NewBuilder builds a Builder for the pool's enforced calling convention.
func NewBuilder(feeCollector common.Address, enforcedSelector [4]byte) *Builder {
	return &Builder{feeCollector: feeCollector, enforcedSelector: enforcedSelector}
}

// Build produces the ordered call sequence for transferring amount through
// the pool's token. Returns the operation and the fee charged.
func (b *Builder) Build(cfg model.PoolConfig, recipient common.Address, amount *big.Int) (model.BatchedOperation, *big.Int, error) {
	fee, remainder, err := FeeSplit(amount, cfg.FeeBasisPoints)
	if err != nil {
		return model.BatchedOperation{}, nil, err
	}

	transfer, err := TransferABI()
	if err != nil {
		return model.BatchedOperation{}, nil, fmt.Errorf("parse transfer abi: %w", err)
	}

	feeData, err := transfer.Pack("transfer", b.feeCollector, fee)
	if err != nil {
		return model.BatchedOperation{}, nil, fmt.Errorf("pack fee transfer: %w", err)
	}
	primaryData, err := transfer.Pack("transfer", recipient, remainder)
	if err != nil {
		return model.BatchedOperation{}, nil, fmt.Errorf("pack primary transfer: %w", err)
	}

	op := model.BatchedOperation{Calls: []model.BatchedCall{
		{Target: cfg.TokenAddress, Data: feeData},
		{Target: cfg.TokenAddress, Data: primaryData},
	}}
	if err := op.CheckInvariants(); err != nil {
		return model.BatchedOperation{}, nil, err
	}

	return op, fee, nil
}

// Encode packs the operation into the single atomic executeBatch payload and
// verifies the selector matches the enforced convention byte-for-byte.
func (b *Builder) Encode(op model.BatchedOperation) ([]byte, error) {
	if err := op.CheckInvariants(); err != nil {
		return nil, err
	}

	parsed, err := AccountABI()
	if err != nil {
		return nil, fmt.Errorf("parse account abi: %w", err)
	}

	targets := make([]common.Address, 0, len(op.Calls))
	payloads := make([][]byte, 0, len(op.Calls))
	for _, call := range op.Calls {
		targets = append(targets, call.Target)
		payloads = append(payloads, call.Data)
	}

	encoded, err := parsed.Pack("executeBatch", targets, payloads)
	if err != nil {
		return nil, fmt.Errorf("pack executeBatch: %w", err)
	}

	if len(encoded) < 4 || !bytes.Equal(encoded[:4], b.enforcedSelector[:]) {
		return nil, fmt.Errorf("%w: got 0x%x, enforced 0x%x", ErrSelectorMismatch, encoded[:4], b.enforcedSelector)
	}

	return encoded, nil
}
