// Package cmd is the case-diary command line: the API server plus the maintenance
// commands that run against the same database.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/api/handlers"
	"github.com/linesmerrill/case-diary-api/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "case-diary",
	Short: "Case diary API for tracking court dates and case history",
	Long: `Case Diary keeps a practitioner's cases with their previous and next hearing
dates, a history of what happened at each stage and the documents filed.

Configuration is read from the environment (DB_URI, DB_NAME, PORT, TIMEZONE, ...)
and optionally from a config file passed with --config.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml) with the same keys as the environment")
}

// initConfig reads in the config file if one was given. Environment variables still
// take precedence.
func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to read config file:", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
}

// connect builds the application services against the configured database. The
// returned func closes the connections.
func connect(ctx context.Context) (*handlers.App, func(), error) {
	a := &handlers.App{Config: *config.New()}
	if err := a.Connect(ctx); err != nil {
		return nil, nil, err
	}
	return a, func() {
		a.Close(context.Background())
		_ = zap.L().Sync()
	}, nil
}

// resolveUser returns the account id for a --user flag holding an email
func resolveUser(ctx context.Context, a *handlers.App, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("--user is required")
	}
	u, err := a.Accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user %s: %w", email, err)
	}
	return u.ID, nil
}
