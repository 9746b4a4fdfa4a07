package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/sheets"
	"github.com/Veraticus/tally/internal/storage"
)

var version = "dev"

// app carries state shared by every command of one invocation.
type app struct {
	v           *viper.Viper
	cfg         *config.Config
	newExporter func(ctx context.Context, cfg sheets.Config) (sheets.Exporter, error)
	cfgFile     string
	ephemeral   bool
}

func newApp() *app {
	return &app{
		v:           config.NewViper(),
		newExporter: newSheetsExporter,
	}
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func (a *app) rootCmd() *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "📒 Personal finance ledger",
		Long: `tally keeps a ledger of income and expense transactions filed under
categories, and answers how much came in, how much went out and what is left.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/tally/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&a.ephemeral, "ephemeral", false, "start from an empty in-memory ledger and discard every change when the command exits (a dry run)")

	// Bind flags to viper
	_ = a.v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(transactionsCmd(a))
	rootCmd.AddCommand(categoriesCmd(a))
	rootCmd.AddCommand(dashboardCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(authCmd(a))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, cli.FormatError(userErr.UserMessage))
			slog.Debug("command failed", "error", userErr.Err)
		} else {
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if err := config.ReadConfigFile(a.v, a.cfgFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if a.ephemeral {
		cfg.Storage.Backend = storage.BackendMemory
	}
	a.cfg = cfg

	level, err := common.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	common.SetupLogger(level, cfg.Logging.Format)

	slog.Debug("configuration loaded",
		"config_file", a.v.ConfigFileUsed(),
		"backend", cfg.Storage.Backend)
	return nil
}

func newSheetsExporter(ctx context.Context, cfg sheets.Config) (sheets.Exporter, error) {
	writer, err := sheets.NewWriter(ctx, cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	return writer, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tally version %s\n", version)
		},
	}
}
