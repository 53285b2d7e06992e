package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sponsorFlow/internal/chain"
	"sponsorFlow/internal/config"
	"sponsorFlow/internal/pinstore"
)

// runPin captures the pool's current runtime bytecode hash as the expected
// hash for every future validation. Run it once, against a pool whose code
// has been reviewed; from then on a hash mismatch halts validation.
func runPin(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	code, err := chainClient.CodeAt(ctx, pool)
	if err != nil {
		return fmt.Errorf("read pool code: %w", err)
	}
	if len(code) == 0 {
		return fmt.Errorf("no contract deployed at %s", pool.Hex())
	}

	hash := crypto.Keccak256Hash(code)
	if err := pinstore.NewStore(cfg.PinFile).Record(pool, hash); err != nil {
		return err
	}

	logger.Info("pool runtime hash pinned",
		zap.String("pool", pool.Hex()),
		zap.String("runtime_code_hash", hash.Hex()),
		zap.String("pin_file", cfg.PinFile),
	)

	return printJSON(map[string]string{
		"pool":              pool.Hex(),
		"runtime_code_hash": hash.Hex(),
	})
}
