package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sponsorFlow/internal/config"
	"sponsorFlow/internal/economics"
	"sponsorFlow/internal/model"
	"sponsorFlow/internal/storage/postgres"
)

func runEconomics(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadEconomics(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, err := config.ParseAddress("pool", cfg.Pool)
	if err != nil {
		return err
	}
	collateral, err := config.ParseAmount("collateral", cfg.Collateral)
	if err != nil {
		return err
	}
	accruedFees, err := config.ParseAmount("accrued-fees", cfg.AccruedFees)
	if err != nil {
		return err
	}
	referencePrice, err := decimal.NewFromString(cfg.ReferencePrice)
	if err != nil {
		return fmt.Errorf("parse reference price: %w", err)
	}

	snapshot := model.PoolSnapshot{
		FeeBasisPoints:      cfg.FeeBps,
		DepositedCollateral: collateral,
		AccruedFees:         accruedFees,
		AccrualPeriodDays:   cfg.AccrualDays,
		EffectiveRate:       cfg.EffectiveRate,
		Volume:              cfg.Volume,
	}

	econ, err := economics.Project(snapshot, referencePrice)
	if err != nil {
		return err
	}

	if cfg.PGDSN != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.UpsertPoolEconomics(ctx, cfg.ChainID, pool.Hex(), econ); err != nil {
			return fmt.Errorf("persist pool economics: %w", err)
		}
		logger.Info("pool economics persisted",
			zap.Uint64("chain_id", cfg.ChainID),
			zap.String("pool", pool.Hex()),
		)
	}

	return printJSON(econ)
}
