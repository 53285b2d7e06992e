package paymaster

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"sponsorFlow/internal/chain"
	"sponsorFlow/internal/model"
	"sponsorFlow/internal/pinstore"
)

// Validator reads and validates a sponsoring pool's configuration and
// solvency before a transfer may be sponsored. Results are valid for a single
// attempt only: collateral and fee parameters are mutable chain state, so the
// validator must be re-invoked immediately before every submission.
type Validator struct {
	port          chain.QueryPort
	pins          *pinstore.Store
	ledger        common.Address
	minCollateral *big.Int
	logger        *zap.Logger
}

// Result carries the fetched config or a kind-classified failure. Only
// malformed encoded responses are returned as plain errors by Validate.
type Result struct {
	Config  *model.PoolConfig
	Failure *model.Failure
}

// OK reports whether the pool passed every check.
func (r Result) OK() bool {
	return r.Failure == nil
}

// NewValidator builds a Validator. minCollateral is the safety threshold the
// pool's deposited sponsorship reserve must meet (worst-case gas for one op).
func NewValidator(port chain.QueryPort, pins *pinstore.Store, ledger common.Address, minCollateral *big.Int, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if minCollateral == nil {
		minCollateral = big.NewInt(0)
	}
	return &Validator{port: port, pins: pins, ledger: ledger, minCollateral: minCollateral, logger: logger}
}

// Validate runs the admission checks for sponsoring a transfer of amount
// through the pool, in order: config reads, runtime hash integrity, ledger
// collateral, minimum transfer floor. The integrity check gates everything
// after it; a mismatched pool is untrusted and sees no further reads.
func (v *Validator) Validate(ctx context.Context, pool common.Address, amount *big.Int) (Result, error) {
	poolABI, err := PoolABI()
	if err != nil {
		return Result{}, fmt.Errorf("parse pool abi: %w", err)
	}

	// The three config reads have no ordering dependency; issue them together.
	var (
		wg                sync.WaitGroup
		feeBps, minAmount *big.Int
		token             common.Address
		errFee, errMin    error
		errToken          error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		feeBps, errFee = v.readUint(ctx, pool, poolABI, "feePct")
	}()
	go func() {
		defer wg.Done()
		minAmount, errMin = v.readUint(ctx, pool, poolABI, "minTransfer")
	}()
	go func() {
		defer wg.Done()
		token, errToken = v.readAddress(ctx, pool, poolABI, "tokenAddress")
	}()
	wg.Wait()

	for _, readErr := range []error{errFee, errMin, errToken} {
		if readErr == nil {
			continue
		}
		if malformed, ok := readErr.(*malformedResponseError); ok {
			return Result{}, malformed
		}
		return networkFailure("pool config read", readErr), nil
	}

	cfg := model.PoolConfig{
		PoolAddress:       pool,
		TokenAddress:      token,
		MinTransferAmount: minAmount,
	}
	if !feeBps.IsUint64() || feeBps.Uint64() > model.BasisPointDenominator {
		return Result{}, fmt.Errorf("pool %s reports fee out of basis point range: %s", pool.Hex(), feeBps)
	}
	cfg.FeeBasisPoints = feeBps.Uint64()
	if err := cfg.CheckInvariants(); err != nil {
		return Result{}, fmt.Errorf("pool %s config invalid: %w", pool.Hex(), err)
	}

	// Integrity gate: hash the deployed runtime code against the pinned
	// hash recorded at verified-deployment time.
	code, err := v.port.CodeAt(ctx, pool)
	if err != nil {
		return networkFailure("pool bytecode fetch", err), nil
	}
	cfg.RuntimeCodeHash = crypto.Keccak256Hash(code)

	expected, pinned, err := v.pins.Lookup(pool)
	if err != nil {
		return Result{}, fmt.Errorf("pin lookup: %w", err)
	}
	if !pinned {
		return Result{Failure: &model.Failure{
			Kind:    model.FailureIntegrity,
			Message: fmt.Sprintf("no pinned runtime hash recorded for pool %s", pool.Hex()),
		}}, nil
	}
	if expected != cfg.RuntimeCodeHash {
		v.logger.Error("pool runtime hash mismatch",
			zap.String("pool", pool.Hex()),
			zap.String("expected", expected.Hex()),
			zap.String("actual", cfg.RuntimeCodeHash.Hex()),
		)
		return Result{Failure: &model.Failure{
			Kind:    model.FailureIntegrity,
			Message: fmt.Sprintf("runtime hash %s does not match pinned %s", cfg.RuntimeCodeHash.Hex(), expected.Hex()),
		}}, nil
	}

	// Solvency: the pool's gas-sponsorship reserve held in the ledger.
	ledgerABI, err := LedgerABI()
	if err != nil {
		return Result{}, fmt.Errorf("parse ledger abi: %w", err)
	}
	collateral, err := v.readBalanceOf(ctx, ledgerABI, pool)
	if err != nil {
		if malformed, ok := err.(*malformedResponseError); ok {
			return Result{}, malformed
		}
		return networkFailure("collateral read", err), nil
	}
	cfg.DepositedCollateral = collateral

	if collateral.Cmp(v.minCollateral) < 0 {
		return Result{Config: &cfg, Failure: &model.Failure{
			Kind:    model.FailureInsufficientSponsorship,
			Message: fmt.Sprintf("collateral %s below threshold %s", collateral, v.minCollateral),
		}}, nil
	}

	// Caller input floor. Equality passes.
	if amount.Cmp(cfg.MinTransferAmount) < 0 {
		return Result{Config: &cfg, Failure: &model.Failure{
			Kind:    model.FailureBelowMinimumTransfer,
			Message: fmt.Sprintf("amount %s below pool minimum %s", amount, cfg.MinTransferAmount),
		}}, nil
	}

	return Result{Config: &cfg}, nil
}

// malformedResponseError marks a response that decoded into garbage, which is
// an unrecoverable condition rather than a surfaced failure kind.
type malformedResponseError struct {
	method string
	cause  error
}

func (e *malformedResponseError) Error() string {
	return fmt.Sprintf("malformed response for %s: %v", e.method, e.cause)
}

func (e *malformedResponseError) Unwrap() error { return e.cause }

func networkFailure(step string, err error) Result {
	return Result{Failure: &model.Failure{
		Kind:    model.FailureNetwork,
		Message: fmt.Sprintf("%s: %v", step, err),
	}}
}

func (v *Validator) call(ctx context.Context, target common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, &malformedResponseError{method: method, cause: err}
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := v.port.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, &malformedResponseError{method: method, cause: err}
	}
	if len(values) == 0 {
		return nil, &malformedResponseError{method: method, cause: fmt.Errorf("empty return")}
	}
	return values, nil
}

func (v *Validator) readUint(ctx context.Context, pool common.Address, parsed abi.ABI, method string) (*big.Int, error) {
	values, err := v.call(ctx, pool, parsed, method)
	if err != nil {
		return nil, err
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, &malformedResponseError{method: method, cause: fmt.Errorf("unexpected type %T", values[0])}
	}
	return new(big.Int).Set(value), nil
}

func (v *Validator) readAddress(ctx context.Context, pool common.Address, parsed abi.ABI, method string) (common.Address, error) {
	values, err := v.call(ctx, pool, parsed, method)
	if err != nil {
		return common.Address{}, err
	}
	value, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, &malformedResponseError{method: method, cause: fmt.Errorf("unexpected type %T", values[0])}
	}
	return value, nil
}

func (v *Validator) readBalanceOf(ctx context.Context, parsed abi.ABI, account common.Address) (*big.Int, error) {
	values, err := v.call(ctx, v.ledger, parsed, "balanceOf", account)
	if err != nil {
		return nil, err
	}
	value, ok := values[0].(*big.Int)
	if !ok {
		return nil, &malformedResponseError{method: "balanceOf", cause: fmt.Errorf("unexpected type %T", values[0])}
	}
	return new(big.Int).Set(value), nil
}
