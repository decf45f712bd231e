package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/desivolt/muzdesk/internal/config"
	"github.com/desivolt/muzdesk/internal/persistence"
)

// MigrateCmd returns the migrate command.
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ticket schema",
		Long: `Apply the schema for the configured store.

For Postgres the .sql files in POSTGRES_MIGRATIONS_DIR are applied in order.
For SQLite the embedded schema is applied to SQLITE_PATH.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			ctx := context.Background()

			summary := ""
			switch cfg.Store.Driver {
			case config.StoreDriverPostgres:
				pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
				if err != nil {
					return err
				}
				defer pg.Close()
				applied, err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger)
				if err != nil {
					return err
				}
				summary = fmt.Sprintf(", %d migration(s) applied", applied)
			case config.StoreDriverSQLite:
				lite, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
				if err != nil {
					return err
				}
				lite.Close()
			default:
				return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
			}

			fmt.Printf("%s schema ready (%s%s)\n", color.New(color.FgGreen).Sprint("✓"), cfg.Store.Driver, summary)
			return nil
		},
	}
}
