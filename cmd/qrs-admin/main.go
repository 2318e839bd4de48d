package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/qrsurvey/qrs-api/internal/config"
	"github.com/qrsurvey/qrs-api/internal/pkg/logger"
)

var cfg *config.Config

// rootCmd is qrs-admin without a subcommand
var rootCmd = &cobra.Command{
	Use:   "qrs-admin",
	Short: "Operator tasks for the QR survey API.",
	Long: `qrs-admin applies the database schema and bootstraps logins
before the first admin can sign in to the web console.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
			log.Warn().Err(err).Msg("logger init failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(newUserCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
