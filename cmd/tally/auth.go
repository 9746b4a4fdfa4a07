package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/sheets"
)

func authCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd(a))

	return cmd
}

func authSheetsCmd(a *app) *cobra.Command {
	var (
		clientID     string
		clientSecret string
		listenAddr   string
	)

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command opens your browser to authenticate with Google, saves the
token for future use and stores the refresh token in your config file.
Run it once before 'tally export --sheets'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if clientID == "" {
				clientID = a.cfg.Sheets.ClientID
			}
			if clientSecret == "" {
				clientSecret = a.cfg.Sheets.ClientSecret
			}
			if clientID == "" || clientSecret == "" {
				return fmt.Errorf("%w: set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret", common.ErrMissingConfig)
			}

			tokenFile := config.SheetsTokenFile()
			slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

			token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				ListenAddr:   listenAddr,
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			out := cmd.OutOrStdout()
			a.v.Set("sheets.refresh_token", token.RefreshToken)
			if err := a.saveConfig(); err != nil {
				slog.Warn("Failed to update config file with refresh token", "error", err)
				fmt.Fprintln(out, cli.FormatWarning("Could not save the refresh token. Add this to your config.yaml:"))
				fmt.Fprintf(out, "sheets:\n  refresh_token: %q\n", token.RefreshToken)
				return nil
			}

			fmt.Fprintln(out, cli.FormatSuccess("Google Sheets is now configured. Run 'tally export --sheets' to write a report."))
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().StringVar(&listenAddr, "listen", "localhost:8080", "address for the OAuth2 callback")

	return cmd
}

// saveConfig writes the viper state back to the config file in use.
func (a *app) saveConfig() error {
	configFile := a.v.ConfigFileUsed()
	if configFile == "" {
		configFile = filepath.Join(config.DefaultConfigDir(), "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o750); err != nil {
		return err
	}
	return a.v.WriteConfigAs(configFile)
}
