package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds orchestrator configuration loaded from flags, env, or config
// file. Values are threaded into components at construction; nothing reads
// them ambiently.
type Config struct {
	RPCURL        string
	Factory       string
	Ledger        string
	FeeCollector  string
	BatchSelector string
	PinFile       string
	MinCollateral string
	MaxRetries    int
	RetryBackoff  time.Duration
	ReportPath    string
	PGDSN         string
	LogLevel      string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"pin-file":       "./data/pins.json",
		"min-collateral": "0",
		"max-retries":    5,
		"retry-backoff":  500 * time.Millisecond,
		"report":         "./data/transfers.jsonl",
		"log-level":      "info",
	})
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		Factory:       v.GetString("factory"),
		Ledger:        v.GetString("ledger"),
		FeeCollector:  v.GetString("fee-collector"),
		BatchSelector: v.GetString("batch-selector"),
		PinFile:       v.GetString("pin-file"),
		MinCollateral: v.GetString("min-collateral"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		ReportPath:    v.GetString("report"),
		PGDSN:         v.GetString("pg-dsn"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("SPONSORFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return v, nil
}
