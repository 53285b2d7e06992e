package model

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// BatchedCall is a single target+calldata pair inside a batched operation.
type BatchedCall struct {
	Target common.Address `json:"target"`
	Data   []byte         `json:"data"`
}

// BatchedOperation is an ordered, non-empty sequence of calls the smart
// account executes atomically. Order is significant: the fee payment must
// precede or accompany the primary transfer.
type BatchedOperation struct {
	Calls []BatchedCall `json:"calls"`
}

// CheckInvariants verifies the sequence is usable as a single atomic payload.
func (op BatchedOperation) CheckInvariants() error {
	if len(op.Calls) == 0 {
		return fmt.Errorf("batched operation must contain at least one call")
	}
	for i, call := range op.Calls {
		if call.Target == (common.Address{}) {
			return fmt.Errorf("call %d has zero target", i)
		}
	}
	return nil
}
