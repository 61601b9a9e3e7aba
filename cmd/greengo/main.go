package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ecorecicla/greengo/internal/catalog"
	"github.com/ecorecicla/greengo/internal/config"
	"github.com/ecorecicla/greengo/internal/crypto"
	"github.com/ecorecicla/greengo/internal/repository/memory"
	"github.com/ecorecicla/greengo/internal/router"
	"github.com/ecorecicla/greengo/internal/service"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := buildLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("greengo failed", zap.Error(err))
	}
}

func buildLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Load(cfg.FixtureDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	key := []byte(cfg.TokenKey)
	if len(key) == 0 {
		if key, err = crypto.RandBytes(32); err != nil {
			return fmt.Errorf("generate token key: %w", err)
		}
	}

	auth := service.NewSimAuth(memory.NewAccountRepo(), key, cfg.AuthDelay, cfg.TokenTTL, log)
	ledger, err := service.NewLedger(cfg.SeedPoints, cfg.SeedCoins, cat.SeedStats(), log)
	if err != nil {
		return err
	}
	scan := service.NewScanSession(cfg.ScanDetectDelay, cfg.ScanProcessDelay, nil, log)

	r := router.New(auth, ledger, scan, cat, log)
	defer r.Close()

	app := newApp(r, ledger, cat, os.Stdout, log)
	app.render()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.readInput(ctx, os.Stdin) })
	g.Go(func() error { return app.pumpEvents(ctx) })

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, errQuit) {
		return nil
	}
	return err
}
