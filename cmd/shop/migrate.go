package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, gdb, l, err := boot(ctx, v)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := repo.Migrate(ctx, gdb); err != nil {
			l.Error("migrate_failed", "error", err)
			return err
		}
		l.Info("migrate_complete")
		return nil
	},
}
