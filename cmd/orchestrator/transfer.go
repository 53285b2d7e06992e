package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"sponsorFlow/internal/account"
	"sponsorFlow/internal/batch"
	"sponsorFlow/internal/chain"
	"sponsorFlow/internal/config"
	"sponsorFlow/internal/model"
	"sponsorFlow/internal/orchestrator"
	"sponsorFlow/internal/paymaster"
	"sponsorFlow/internal/pinstore"
	"sponsorFlow/internal/storage"
	"sponsorFlow/internal/storage/postgres"
)

func runValidate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	poolFlag, _ := cmd.Flags().GetString("pool")
	pool, err := config.ParseAddress("pool", poolFlag)
	if err != nil {
		return err
	}
	ledger, err := config.ParseAddress("ledger", cfg.Ledger)
	if err != nil {
		return err
	}
	amountFlag, _ := cmd.Flags().GetString("amount")
	amount, err := config.ParseAmount("amount", amountFlag)
	if err != nil {
		return err
	}
	minCollateral, err := config.ParseAmount("min-collateral", cfg.MinCollateral)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	validator := paymaster.NewValidator(chainClient, pinstore.NewStore(cfg.PinFile), ledger, minCollateral, logger)

	result, err := validator.Validate(ctx, pool, amount)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ownerFlag, _ := cmd.Flags().GetString("owner")
	owner, err := config.ParseAddress("owner", ownerFlag)
	if err != nil {
		return err
	}
	recipientFlag, _ := cmd.Flags().GetString("recipient")
	recipient, err := config.ParseAddress("recipient", recipientFlag)
	if err != nil {
		return err
	}
	poolFlag, _ := cmd.Flags().GetString("pool")
	pool, err := config.ParseAddress("pool", poolFlag)
	if err != nil {
		return err
	}
	factory, err := config.ParseAddress("factory", cfg.Factory)
	if err != nil {
		return err
	}
	feeCollector, err := config.ParseAddress("fee-collector", cfg.FeeCollector)
	if err != nil {
		return err
	}
	ledger, err := config.ParseAddress("ledger", cfg.Ledger)
	if err != nil {
		return err
	}
	amountFlag, _ := cmd.Flags().GetString("amount")
	amount, err := config.ParseAmount("amount", amountFlag)
	if err != nil {
		return err
	}
	minCollateral, err := config.ParseAmount("min-collateral", cfg.MinCollateral)
	if err != nil {
		return err
	}

	selector, err := batch.ExecuteBatchSelector()
	if err != nil {
		return err
	}
	if cfg.BatchSelector != "" {
		selector, err = config.ParseSelector(cfg.BatchSelector)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var sink storage.ReportSink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		sink = store
	} else if cfg.ReportPath != "" {
		sink = storage.NewJsonlSink(cfg.ReportPath)
	}

	orch := orchestrator.NewOrchestrator(
		orchestrator.Config{MaxRetries: cfg.MaxRetries, RetryBackoff: cfg.RetryBackoff},
		chainClient,
		account.NewResolver(chainClient, factory, logger),
		paymaster.NewValidator(chainClient, pinstore.NewStore(cfg.PinFile), ledger, minCollateral, logger),
		batch.NewBuilder(feeCollector, selector),
		sink,
		logger,
	)

	prepared, err := orch.PrepareTransfer(ctx, owner, pool, recipient, amount)
	if err != nil {
		return err
	}

	out := quoteOutput{Wallet: prepared.Wallet, Pool: prepared.Pool, Failure: prepared.Failure}
	if prepared.Fee != nil {
		out.Fee = prepared.Fee.String()
	}
	if len(prepared.Payload) > 0 {
		out.Payload = hexutil.Encode(prepared.Payload)
	}

	// A quote is only worth printing as submittable if the pool still
	// validates at this instant; parameters may have moved mid-quote.
	if prepared.Failure == nil && prepared.Pool != nil {
		failure, err := orch.ConfirmBeforeSubmit(ctx, *prepared.Pool, amount)
		if errors.Is(err, orchestrator.ErrParametersChanged) {
			out.Submittable = false
			out.Note = err.Error()
		} else if err != nil {
			return err
		} else if failure != nil {
			out.Submittable = false
			out.Failure = failure
		} else {
			out.Submittable = true
		}
	}

	return printJSON(out)
}

type quoteOutput struct {
	Wallet      model.WalletStatus `json:"wallet"`
	Pool        *model.PoolConfig  `json:"pool,omitempty"`
	Fee         string             `json:"fee,omitempty"`
	Payload     string             `json:"payload,omitempty"`
	Submittable bool               `json:"submittable"`
	Failure     *model.Failure     `json:"failure,omitempty"`
	Note        string             `json:"note,omitempty"`
}
