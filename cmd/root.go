// Package cmd contains the nberscan command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/econlabs/nber-paper-crawler/internal/config"
	"github.com/econlabs/nber-paper-crawler/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nberscan",
		Short: "Discover and extract NBER working papers by topic.",
		Long: `nberscan walks the NBER working-paper numbering space backward from the
newest paper, extracts structured metadata from each paper page, and keeps
the papers matching a topic query and publication-date window. Results are
checkpointed to JSON incrementally so an interrupted run loses nothing.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional; env vars use the NBERSCAN_ prefix)")

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newFrontierCmd())

	return cmd
}

// loadRuntime builds the config and logger shared by all subcommands.
func loadRuntime() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point. SIGINT and SIGTERM cancel the command
// context so a running scan can write its emergency checkpoint.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
