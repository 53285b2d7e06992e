package config

import (
	"github.com/spf13/pflag"
)

// EconomicsConfig holds configuration for the economics command. Snapshot
// values arrive as display-boundary inputs rather than chain reads; the
// command only projects them.
type EconomicsConfig struct {
	Pool           string
	FeeBps         uint64
	Collateral     string
	AccruedFees    string
	AccrualDays    int64
	EffectiveRate  string
	Volume         string
	ReferencePrice string
	ChainID        uint64
	PGDSN          string
	LogLevel       string
}

// LoadEconomics merges config file, environment variables, and flags into
// EconomicsConfig.
func LoadEconomics(cfgFile string, flags *pflag.FlagSet) (EconomicsConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"accrual-days": int64(30),
		"log-level":    "info",
	})
	if err != nil {
		return EconomicsConfig{}, err
	}

	cfg := EconomicsConfig{
		Pool:           v.GetString("pool"),
		FeeBps:         v.GetUint64("fee-bps"),
		Collateral:     v.GetString("collateral"),
		AccruedFees:    v.GetString("accrued-fees"),
		AccrualDays:    v.GetInt64("accrual-days"),
		EffectiveRate:  v.GetString("effective-rate"),
		Volume:         v.GetString("volume"),
		ReferencePrice: v.GetString("reference-price"),
		ChainID:        v.GetUint64("chain-id"),
		PGDSN:          v.GetString("pg-dsn"),
		LogLevel:       v.GetString("log-level"),
	}

	return cfg, nil
}
