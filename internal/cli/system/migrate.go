package system

import (
	"fmt"
	"io/fs"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/migration"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
	"github.com/julianstephens/weeklit/migrations"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	defer ctx.Store.Close()

	runner, err := migrationRunner(ctx)
	if err != nil {
		return err
	}

	count, err := runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}

	return nil
}

// migrationRunner builds a runner over the store's embedded migration set.
func migrationRunner(ctx *cli.Context) (*migration.Runner, error) {
	switch store := ctx.Store.(type) {
	case *sqlite.Store:
		db := store.GetDB()
		if db == nil {
			return nil, fmt.Errorf("database connection is nil")
		}
		sub, err := fs.Sub(migrations.FS, "sqlite")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		return migration.NewRunner(db, sub), nil
	case *postgres.Store:
		db := store.GetDB()
		if db == nil {
			return nil, fmt.Errorf("database connection is nil")
		}
		sub, err := fs.Sub(migrations.FS, "postgres")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		return migration.NewRunner(db, sub), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend for migrations")
	}
}
