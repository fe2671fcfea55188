// Package cli implements the etl command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpattn/gamesetl/internal/config"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		logFormat  string
	)
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "etl",
		Short:         "Video game catalogue ETL pipeline",
		Long:          "Ingest games from the catalogue API, corrupt and clean the stored table, and enrich it with a secondary dataset.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(a.logger)
			if cfg.Source != "" {
				a.logger.Debug("configuration loaded", "file", cfg.Source)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file or directory containing etl.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(
		newIngestCmd(a),
		newCleanCmd(a),
		newEnrichCmd(a),
		newRunCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "etl version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}
