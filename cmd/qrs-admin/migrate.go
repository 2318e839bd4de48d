package main

import (
	"github.com/spf13/cobra"

	"github.com/qrsurvey/qrs-api/internal/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database schema.",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer database.ClosePostgres(db)

		return database.Migrate(cmd.Context(), db)
	},
}
