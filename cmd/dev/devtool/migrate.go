package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopkit/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and check the runtime connection",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Uses DIRECT_URL when set.
		if err := db.Migrate(cfg.MigrationsPath, cfg); err != nil {
			return fmt.Errorf("migrate failed: %w", err)
		}

		// DSNs are not printed.
		pool, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("runtime db open failed: %w", err)
		}
		pool.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}
