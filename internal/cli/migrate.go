package cli

import (
	"os"

	"github.com/spf13/cobra"

	"walletreg/internal/platform/config"
	"walletreg/internal/platform/postgres"
	"walletreg/internal/registry/store"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply the registry schema to PostgreSQL",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return WrapExitError(ExitCommandError, "database URL is required", nil)
			}
			db, err := postgres.Open(cmd.Context(), config.DatabaseConfig{URL: databaseURL})
			if err != nil {
				return WrapExitError(ExitCommandError, "connect to postgres", err)
			}
			defer db.Close()

			if err := store.Migrate(cmd.Context(), db); err != nil {
				return WrapExitError(ExitFailure, "apply schema", err)
			}
			return rootOpts.formatter(cmd).Success(map[string]string{"status": "migrated"}, "schema up to date")
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	return cmd
}
