package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"sponsorFlow/internal/account"
	"sponsorFlow/internal/batch"
	"sponsorFlow/internal/chain"
	"sponsorFlow/internal/model"
	"sponsorFlow/internal/paymaster"
	"sponsorFlow/internal/storage"
)

// ErrParametersChanged means pool parameters drifted between the quote and
// the submission-time revalidation. The caller must re-quote; stale
// parameters are never used silently.
var ErrParametersChanged = errors.New("pool parameters changed since quote")

// Config holds runtime settings for the orchestrator.
type Config struct {
	MaxRetries   int
	RetryBackoff time.Duration
}

// Orchestrator drives one caller's gasless transfer: capability resolution,
// pool validation, and batched payload assembly. Each call is scoped to a
// single request; there is no shared mutable state across sessions.
type Orchestrator struct {
	cfg       Config
	port      chain.QueryPort
	resolver  *account.Resolver
	validator *paymaster.Validator
	builder   *batch.Builder
	sink      storage.ReportSink
	logger    *zap.Logger
}

// NewOrchestrator builds an Orchestrator with its dependencies. The sink is
// optional; without one, attempts are not reported.
func NewOrchestrator(
	cfg Config,
	port chain.QueryPort,
	resolver *account.Resolver,
	validator *paymaster.Validator,
	builder *batch.Builder,
	sink storage.ReportSink,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		port:      port,
		resolver:  resolver,
		validator: validator,
		builder:   builder,
		sink:      sink,
		logger:    logger,
	}
}

// PreparedTransfer is the outcome of one preparation attempt. When Failure is
// set the remaining fields describe how far the attempt got.
type PreparedTransfer struct {
	Wallet    model.WalletStatus
	Pool      *model.PoolConfig
	Operation model.BatchedOperation
	Payload   []byte
	Fee       *big.Int
	Failure   *model.Failure
}

// PrepareTransfer resolves the owner's wallet, validates the pool, and
// assembles the encoded batched operation for the requested transfer.
// Transient network failures retry with exponential backoff; every other
// failure kind surfaces immediately inside the result.
func (o *Orchestrator) PrepareTransfer(
	ctx context.Context,
	owner common.Address,
	pool common.Address,
	recipient common.Address,
	amount *big.Int,
) (PreparedTransfer, error) {
	prepared := PreparedTransfer{Wallet: o.resolver.Resolve(ctx, &owner)}

	if prepared.Wallet.SmartAccountAddress == nil {
		prepared.Failure = &model.Failure{
			Kind:    model.FailureNetwork,
			Message: "no smart account address resolved: " + prepared.Wallet.LastError,
		}
		o.report(ctx, owner, pool, recipient, amount, prepared)
		return prepared, nil
	}

	result, err := o.validateWithRetry(ctx, pool, amount)
	if err != nil {
		return prepared, err
	}
	prepared.Pool = result.Config
	if result.Failure != nil {
		prepared.Failure = result.Failure
		o.report(ctx, owner, pool, recipient, amount, prepared)
		return prepared, nil
	}

	op, fee, err := o.builder.Build(*result.Config, recipient, amount)
	if err != nil {
		return prepared, fmt.Errorf("build batched operation: %w", err)
	}
	payload, err := o.builder.Encode(op)
	if err != nil {
		return prepared, fmt.Errorf("encode batched operation: %w", err)
	}

	prepared.Operation = op
	prepared.Payload = payload
	prepared.Fee = fee

	o.logger.Info("transfer prepared",
		zap.String("owner", owner.Hex()),
		zap.String("smart_account", prepared.Wallet.SmartAccountAddress.Hex()),
		zap.String("pool", pool.Hex()),
		zap.String("amount", amount.String()),
		zap.String("fee", fee.String()),
	)
	o.report(ctx, owner, pool, recipient, amount, prepared)
	return prepared, nil
}

// ConfirmBeforeSubmit re-runs the full validation immediately before the
// payload is handed to the external signer. Pool collateral and fee
// parameters can change between quote and submission, so nothing from the
// quote is reused. Parameter drift fails with ErrParametersChanged.
func (o *Orchestrator) ConfirmBeforeSubmit(ctx context.Context, quoted model.PoolConfig, amount *big.Int) (*model.Failure, error) {
	result, err := o.validateWithRetry(ctx, quoted.PoolAddress, amount)
	if err != nil {
		return nil, err
	}
	if result.Failure != nil {
		return result.Failure, nil
	}

	fresh := result.Config
	if fresh.FeeBasisPoints != quoted.FeeBasisPoints ||
		fresh.MinTransferAmount.Cmp(quoted.MinTransferAmount) != 0 ||
		fresh.TokenAddress != quoted.TokenAddress {
		o.logger.Warn("pool parameters drifted between quote and submission",
			zap.String("pool", quoted.PoolAddress.Hex()),
			zap.Uint64("quoted_fee_bps", quoted.FeeBasisPoints),
			zap.Uint64("fresh_fee_bps", fresh.FeeBasisPoints),
		)
		return nil, ErrParametersChanged
	}
	return nil, nil
}

func (o *Orchestrator) validateWithRetry(ctx context.Context, pool common.Address, amount *big.Int) (paymaster.Result, error) {
	var (
		result   paymaster.Result
		fatalErr error
	)

	retryErr := withRetry(ctx, o.cfg.MaxRetries, o.cfg.RetryBackoff, func(ctx context.Context) error {
		res, err := o.validator.Validate(ctx, pool, amount)
		if err != nil {
			fatalErr = err
			return nil
		}
		result = res
		if res.Failure != nil && res.Failure.Retryable() {
			o.logger.Warn("pool validation transient failure", zap.String("pool", pool.Hex()), zap.String("detail", res.Failure.Message))
			return errors.New(res.Failure.Message)
		}
		return nil
	})
	if fatalErr != nil {
		return paymaster.Result{}, fatalErr
	}
	if retryErr != nil && result.Failure == nil {
		return paymaster.Result{}, retryErr
	}
	return result, nil
}

func (o *Orchestrator) report(ctx context.Context, owner, pool, recipient common.Address, amount *big.Int, prepared PreparedTransfer) {
	if o.sink == nil {
		return
	}

	record := model.TransferRecord{
		Owner:      owner.Hex(),
		Pool:       pool.Hex(),
		Recipient:  recipient.Hex(),
		Amount:     amount.String(),
		Outcome:    "prepared",
		PreparedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if chainID, err := o.port.GetChainID(ctx); err == nil && chainID.IsUint64() {
		record.ChainID = chainID.Uint64()
	}
	if prepared.Wallet.SmartAccountAddress != nil {
		record.SmartAccount = prepared.Wallet.SmartAccountAddress.Hex()
	}
	if prepared.Pool != nil {
		record.Token = prepared.Pool.TokenAddress.Hex()
	}
	if prepared.Fee != nil {
		record.Fee = prepared.Fee.String()
	}
	if prepared.Failure != nil {
		record.Outcome = "failed"
		record.FailureKind = string(prepared.Failure.Kind)
		record.FailureDetail = prepared.Failure.Message
	}

	if err := o.sink.PutTransferBatch(ctx, []model.TransferRecord{record}); err != nil {
		o.logger.Warn("transfer report write failed", zap.Error(err))
	}
}
