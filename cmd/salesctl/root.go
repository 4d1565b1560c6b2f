package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/salesdesk/internal/config"
	"github.com/mamadbah2/salesdesk/internal/repository"
	"github.com/mamadbah2/salesdesk/internal/repository/stores"
	"github.com/mamadbah2/salesdesk/pkg/logger"
)

// envFile is the optional .env file passed with --env.
var envFile string

// verbose switches the logger to debug level.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Maintenance commands for the sales entry service",
	Long: `salesctl prepares and inspects the sales store used by the server.

Example Usage:
  salesctl init-db                          # create the sqlite schema
  salesctl seed-catalog --file bottles.yaml # upsert bottle types
  salesctl export --format xlsx --out .     # write every sale line to a file`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "path to a .env file (default: ./.env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// runtimeEnv is what every subcommand needs: configuration, a logger and an
// open store.
type runtimeEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	store  repository.Store
}

func openEnv(ctx context.Context) (*runtimeEnv, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, err
	}
	store, err := stores.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return &runtimeEnv{cfg: cfg, logger: log, store: store}, nil
}

func (e *runtimeEnv) close(ctx context.Context) {
	if err := e.store.Close(ctx); err != nil {
		e.logger.Error("failed to close store", zap.Error(err))
	}
	_ = e.logger.Sync()
}
