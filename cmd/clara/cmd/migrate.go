package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/hyperxav/clara/pkg/config"
	"github.com/hyperxav/clara/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the conversations table in the Postgres archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			dbConfig := database.DefaultConfig()
			dbConfig.URL = config.GetEnv("DATABASE_URL", "")

			db, err := database.Connect(cmd.Context(), dbConfig, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			applied, err := database.ApplySchema(cmd.Context(), db, logger)
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen)
			for _, name := range applied {
				_, _ = green.Fprint(cmd.OutOrStdout(), "✓ ")
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
