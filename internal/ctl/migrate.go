package ctl

import (
	"fmt"

	"github.com/dmitrijs2005/gophgram/internal/server/repositories/repomanager"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Example: `  gophctl migrate --driver pgx --dsn postgres://localhost/gophgram
  gophctl migrate --driver sqlite --dsn file:gophgram.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rm, err := repomanager.NewSQLRepositoryManager(driver)
			if err != nil {
				return err
			}

			db, err := repomanager.Open(cmd.Context(), driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := rm.RunMigrations(cmd.Context(), db.DB); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return err
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "pgx", "database driver: pgx, mysql or sqlite")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database DSN")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}
