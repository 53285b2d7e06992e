package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sponsorFlow/internal/account"
	"sponsorFlow/internal/chain"
	"sponsorFlow/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "orchestrator",
		Short:        "Account-abstraction gasless transfer orchestrator",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a signer's wallet capability and smart account",
		RunE:  runResolve,
	}
	resolveCmd.Flags().String("rpc", "", "chain RPC URL")
	resolveCmd.Flags().String("factory", "", "account factory address")
	resolveCmd.Flags().String("address", "", "connected signer address")
	resolveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(resolveCmd)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a sponsoring pool's configuration and solvency",
		RunE:  runValidate,
	}
	addPoolFlags(validateCmd)
	root.AddCommand(validateCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Prepare and encode a sponsored transfer",
		RunE:  runQuote,
	}
	addPoolFlags(quoteCmd)
	quoteCmd.Flags().String("owner", "", "signer (owner) address")
	quoteCmd.Flags().String("recipient", "", "transfer recipient address")
	quoteCmd.Flags().String("factory", "", "account factory address")
	quoteCmd.Flags().String("fee-collector", "", "sponsor fee collector address")
	quoteCmd.Flags().String("batch-selector", "", "enforced batch selector (defaults to executeBatch)")
	quoteCmd.Flags().String("report", "./data/transfers.jsonl", "transfer report JSONL path")
	quoteCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for reporting")
	root.AddCommand(quoteCmd)

	pinCmd := &cobra.Command{
		Use:   "pin",
		Short: "Record a verified pool's runtime bytecode hash",
		RunE:  runPin,
	}
	pinCmd.Flags().String("rpc", "", "chain RPC URL")
	pinCmd.Flags().String("pool", "", "pool address")
	pinCmd.Flags().String("pin-file", "./data/pins.json", "pinned hash store path")
	pinCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(pinCmd)

	economicsCmd := &cobra.Command{
		Use:   "economics",
		Short: "Project pool economics from a snapshot",
		RunE:  runEconomics,
	}
	economicsCmd.Flags().String("pool", "", "pool address")
	economicsCmd.Flags().Uint64("fee-bps", 0, "pool fee in basis points")
	economicsCmd.Flags().String("collateral", "", "deposited collateral (integer units)")
	economicsCmd.Flags().String("accrued-fees", "", "fees accrued over the period (integer units)")
	economicsCmd.Flags().Int64("accrual-days", 30, "fee accrual period in days")
	economicsCmd.Flags().String("effective-rate", "", "pool effective exchange rate")
	economicsCmd.Flags().String("volume", "", "pool volume in display currency")
	economicsCmd.Flags().String("reference-price", "", "reference market price")
	economicsCmd.Flags().Uint64("chain-id", 0, "chain id for persisted snapshots")
	economicsCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for reporting")
	economicsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(economicsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// addPoolFlags attaches the flags shared by every command that validates a pool.
func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("pool", "", "pool address")
	cmd.Flags().String("ledger", "", "sponsorship ledger (entry point) address")
	cmd.Flags().String("amount", "", "transfer amount (integer, token-decimal-scaled)")
	cmd.Flags().String("pin-file", "./data/pins.json", "pinned hash store path")
	cmd.Flags().String("min-collateral", "0", "collateral safety threshold (integer units)")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts for transient failures")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runResolve(cmd *cobra.Command, _ []string) error {
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

	factory, err := config.ParseAddress("factory", cfg.Factory)
	if err != nil {
		return err
	}
	signerFlag, _ := cmd.Flags().GetString("address")
	signer, err := config.ParseAddress("signer", signerFlag)
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

	resolver := account.NewResolver(chainClient, factory, logger)
	session := account.NewSession(resolver)
	status := session.Connect(ctx, signer)

	return printJSON(status)
}

func printJSON(value interface{}) error {
	out, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
