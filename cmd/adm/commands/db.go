package commands

import (
	"context"
	"database/sql"

	"feedbackboard/internal/config"
	"feedbackboard/internal/observability"
	contextutils "feedbackboard/internal/utils"

	"github.com/spf13/cobra"
)

const countKeysQuery = `SELECT COUNT(*) FROM kv_store`

// Migrator applies the schema migrations to a database URL
type Migrator interface {
	RunMigrations(ctx context.Context, databaseURL string) error
}

// DatabaseCommands returns the database management commands. db is nil unless the
// postgres storage backend is configured.
func DatabaseCommands(cfg *config.Config, db *sql.DB, migrator Migrator, logger *observability.Logger, opts *Options) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the postgres storage backend.

Available commands:
  status    - Show the connection and the number of stored keys
  migrate   - Apply pending schema migrations`,
	}

	dbCmd.AddCommand(dbStatusCmd(cfg, db, logger, opts))
	dbCmd.AddCommand(migrateCmd(cfg, migrator, logger, opts))

	return dbCmd
}

func dbStatusCmd(cfg *config.Config, db *sql.DB, logger *observability.Logger, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database status",
		Args:  cobra.NoArgs,
		RunE:  runDBStatus(cfg, db, logger, opts),
	}
}

func runDBStatus(cfg *config.Config, db *sql.DB, logger *observability.Logger, opts *Options) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)

		opts.printf("Storage backend: %s\n", cfg.Storage.Backend)
		if cfg.Storage.Backend != config.StorageBackendPostgres {
			return contextutils.WrapErrorf(contextutils.ErrInvalidInput,
				"database commands require the %s storage backend", config.StorageBackendPostgres)
		}
		if db == nil {
			return contextutils.WrapError(contextutils.ErrDatabaseConnection, "database connection not available")
		}

		opts.printf("Database URL:    %s\n", maskDatabaseURL(cfg.Database.URL))
		opts.printf("Connection:      %s\n", getDatabaseInfo(ctx, db))

		var keys int
		if err := db.QueryRowContext(ctx, countKeysQuery).Scan(&keys); err != nil {
			logger.Error(ctx, "Failed to count stored keys", err, nil)
			return contextutils.WrapErrorf(contextutils.ErrDatabaseQuery, "failed to count stored keys: %w", err)
		}
		opts.printf("Stored keys:     %d\n", keys)
		return nil
	}
}

func migrateCmd(cfg *config.Config, migrator Migrator, logger *observability.Logger, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			if cfg.Database.URL == "" {
				return contextutils.WrapError(contextutils.ErrDatabaseConnection, "database url is not configured")
			}

			logger.Info(ctx, "Running migrations from admin CLI", map[string]interface{}{"database": maskDatabaseURL(cfg.Database.URL)})
			if err := migrator.RunMigrations(ctx, cfg.Database.URL); err != nil {
				return err
			}
			opts.printf("Migrations applied to %s\n", maskDatabaseURL(cfg.Database.URL))
			return nil
		},
	}
}
