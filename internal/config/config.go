// Package config reads runtime configuration for the GreenGo client.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config collects the simulated-latency timings, seed balances and the
// session token parameters. Environment variables win over flags.
type Config struct {
	AuthDelay        time.Duration `env:"GREENGO_AUTH_DELAY"`
	ScanDetectDelay  time.Duration `env:"GREENGO_SCAN_DETECT_DELAY"`
	ScanProcessDelay time.Duration `env:"GREENGO_SCAN_PROCESS_DELAY"`
	SeedPoints       int           `env:"GREENGO_SEED_POINTS"`
	SeedCoins        int           `env:"GREENGO_SEED_COINS"`
	TokenKey         string        `env:"GREENGO_TOKEN_KEY"`
	TokenTTL         time.Duration `env:"GREENGO_TOKEN_TTL"`
	FixtureDir       string        `env:"GREENGO_FIXTURE_DIR"`
	Dev              bool          `env:"GREENGO_DEV"`
}

// Defaults mirror the reference behavior: 1.5s login simulation, 3s+1.5s
// scan simulation, and the 1250/850 starting balances.
const (
	DefaultAuthDelay        = 1500 * time.Millisecond
	DefaultScanDetectDelay  = 3000 * time.Millisecond
	DefaultScanProcessDelay = 1500 * time.Millisecond
	DefaultSeedPoints       = 1250
	DefaultSeedCoins        = 850
	DefaultTokenTTL         = 24 * time.Hour
)

// Parse reads configuration from command-line flags and environment variables.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	fromEnv := *cfg

	flag.DurationVar(&cfg.AuthDelay, "auth-delay", DefaultAuthDelay, "simulated login/sign-up latency")
	flag.DurationVar(&cfg.ScanDetectDelay, "scan-detect-delay", DefaultScanDetectDelay, "simulated camera detection delay")
	flag.DurationVar(&cfg.ScanProcessDelay, "scan-process-delay", DefaultScanProcessDelay, "simulated scan processing delay")
	flag.IntVar(&cfg.SeedPoints, "seed-points", DefaultSeedPoints, "starting points balance")
	flag.IntVar(&cfg.SeedCoins, "seed-coins", DefaultSeedCoins, "starting coins balance")
	flag.StringVar(&cfg.TokenKey, "token-key", "", "HS256 session token key (random when empty)")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", DefaultTokenTTL, "session token TTL")
	flag.StringVar(&cfg.FixtureDir, "fixtures", "", "directory with catalog fixture overrides")
	flag.BoolVar(&cfg.Dev, "dev", false, "development logging")
	flag.Parse()

	if fromEnv.AuthDelay != 0 {
		cfg.AuthDelay = fromEnv.AuthDelay
	}
	if fromEnv.ScanDetectDelay != 0 {
		cfg.ScanDetectDelay = fromEnv.ScanDetectDelay
	}
	if fromEnv.ScanProcessDelay != 0 {
		cfg.ScanProcessDelay = fromEnv.ScanProcessDelay
	}
	if fromEnv.SeedPoints != 0 {
		cfg.SeedPoints = fromEnv.SeedPoints
	}
	if fromEnv.SeedCoins != 0 {
		cfg.SeedCoins = fromEnv.SeedCoins
	}
	if fromEnv.TokenKey != "" {
		cfg.TokenKey = fromEnv.TokenKey
	}
	if fromEnv.TokenTTL != 0 {
		cfg.TokenTTL = fromEnv.TokenTTL
	}
	if fromEnv.FixtureDir != "" {
		cfg.FixtureDir = fromEnv.FixtureDir
	}
	if fromEnv.Dev {
		cfg.Dev = true
	}

	if cfg.SeedPoints < 0 || cfg.SeedCoins < 0 {
		return nil, fmt.Errorf("seed balances must be non-negative (points=%d coins=%d)", cfg.SeedPoints, cfg.SeedCoins)
	}

	return cfg, nil
}
