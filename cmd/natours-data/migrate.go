package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/natours/internal/migrations"
)

// NewMigrateCmd создаёт подкоманду migrate.
func NewMigrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database index migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cfg, ctx, cancel, err := connect(cmd, opts)
			if err != nil {
				return err
			}
			defer cancel()
			defer store.Close(ctx)

			if err := migrations.Run(store.Client, cfg.Mongo.Database, cfg.Mongo.MigrationsPath); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			cmd.Println("Migrations applied")
			return nil
		},
	}
	cmd.Flags().Bool("verbose", false, "log database activity")
	return cmd
}
