package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/storage"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// If force flag is provided, delete existing database
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			ctx.PerformAutomaticBackup()
			// Close before deleting to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized weeklit storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, sourcePath string) error {
	var sourceStore storage.Provider
	if strings.HasPrefix(sourcePath, "postgres://") || strings.HasPrefix(sourcePath, "postgresql://") {
		if valid, err := postgres.ValidateConnString(sourcePath); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return err
		}
		sourceStore = postgres.New(sourcePath)
	} else {
		sourceStore = sqlite.NewStore(sourcePath)
	}

	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Migrating habits...")
	habits, err := sourceStore.GetAllHabits(true, true)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, habit := range habits {
		if err := ctx.Store.AddHabit(habit); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", habit.ID, err)
		}
	}
	fmt.Printf("    Migrated %d habits\n", len(habits))

	fmt.Println("  Migrating completions...")
	completions, err := sourceStore.GetAllCompletions()
	if err != nil {
		return fmt.Errorf("failed to get completions from source: %w", err)
	}
	for _, completion := range completions {
		if err := ctx.Store.AddCompletion(completion); err != nil {
			return fmt.Errorf("failed to add completion %s: %w", completion.ID, err)
		}
	}
	fmt.Printf("    Migrated %d completions\n", len(completions))

	fmt.Println("  Migrating deferrals...")
	deferrals, err := sourceStore.GetAllDeferrals()
	if err != nil {
		return fmt.Errorf("failed to get deferrals from source: %w", err)
	}
	for _, deferral := range deferrals {
		if err := ctx.Store.SaveDeferral(deferral); err != nil {
			return fmt.Errorf("failed to save deferral %s: %w", deferral.ID, err)
		}
	}
	fmt.Printf("    Migrated %d deferrals\n", len(deferrals))

	fmt.Println("  Migrating ad-hoc tasks...")
	adhocTasks, err := sourceStore.GetAllAdHocTasks()
	if err != nil {
		return fmt.Errorf("failed to get ad-hoc tasks from source: %w", err)
	}
	for _, task := range adhocTasks {
		if err := ctx.Store.AddAdHocTask(task); err != nil {
			return fmt.Errorf("failed to add ad-hoc task %s: %w", task.ID, err)
		}
	}
	fmt.Printf("    Migrated %d ad-hoc tasks\n", len(adhocTasks))

	fmt.Println("  Migrating day stats...")
	dayStats, err := sourceStore.GetAllDayStats()
	if err != nil {
		return fmt.Errorf("failed to get day stats from source: %w", err)
	}
	for _, st := range dayStats {
		if err := ctx.Store.UpsertDayStats(st); err != nil {
			return fmt.Errorf("failed to save day stats for %s: %w", st.Day, err)
		}
	}
	fmt.Printf("    Migrated %d day stats rows\n", len(dayStats))

	return nil
}
