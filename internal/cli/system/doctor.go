package system

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/weeklit/internal/backup"
	"github.com/julianstephens/weeklit/internal/cli"
	"github.com/julianstephens/weeklit/internal/constants"
	"github.com/julianstephens/weeklit/internal/storage/postgres"
	"github.com/julianstephens/weeklit/internal/storage/sqlite"
	"github.com/julianstephens/weeklit/internal/utils"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	// Check 1: DB reachable
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	// Check 2: Schema version valid (only if DB is reachable)
	if dbReachable {
		if err := checkSchemaVersion(ctx); err != nil {
			fmt.Printf("❌ Schema version: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Schema version: OK\n")
		}
	} else {
		fmt.Printf("⊘ Schema version: SKIPPED (database not reachable)\n")
	}

	// Check 3: Migrations complete (only if DB is reachable)
	if dbReachable {
		if err := checkMigrationsComplete(ctx); err != nil {
			fmt.Printf("❌ Migrations complete: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Migrations complete: OK\n")
		}
	} else {
		fmt.Printf("⊘ Migrations complete: SKIPPED (database not reachable)\n")
	}

	// Check 4: Backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 5: Settings sanity (only if DB is reachable)
	if dbReachable {
		if err := checkSettings(ctx); err != nil {
			fmt.Printf("❌ Settings: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Settings: OK\n")
		}
	} else {
		fmt.Printf("⊘ Settings: SKIPPED (database not reachable)\n")
	}

	// Check 6: Clock/timezone sanity
	if err := checkClockTimezone(ctx, dbReachable); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 7: Habit integrity (only if DB is reachable)
	if dbReachable {
		if err := checkHabitIntegrity(ctx); err != nil {
			fmt.Printf("❌ Habit integrity: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Habit integrity: OK\n")
		}
	} else {
		fmt.Printf("⊘ Habit integrity: SKIPPED (database not reachable)\n")
	}

	// Check 8: Completion duplicates (only if DB is reachable)
	if dbReachable {
		if err := checkCompletionDuplicates(ctx); err != nil {
			fmt.Printf("❌ Completion duplicates: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Completion duplicates: OK\n")
		}
	} else {
		fmt.Printf("⊘ Completion duplicates: SKIPPED (database not reachable)\n")
	}

	// Check 9: Deferral integrity (only if DB is reachable)
	if dbReachable {
		if err := checkDeferralIntegrity(ctx); err != nil {
			fmt.Printf("❌ Deferral integrity: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Deferral integrity: OK\n")
		}
	} else {
		fmt.Printf("⊘ Deferral integrity: SKIPPED (database not reachable)\n")
	}

	// Check 10: Date formats (only if DB is reachable)
	if dbReachable {
		if err := checkDateFormats(ctx); err != nil {
			fmt.Printf("❌ Date formats: FAIL\n")
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ Date formats: OK\n")
		}
	} else {
		fmt.Printf("⊘ Date formats: SKIPPED (database not reachable)\n")
	}

	// Check 11: Concurrent instances (warning only)
	if n, err := countOtherInstances(); err != nil {
		fmt.Printf("⊘ Concurrent instances: SKIPPED (%v)\n", err)
	} else if n > 0 {
		fmt.Printf("⚠ Concurrent instances: %d other %s process(es) running\n", n, constants.AppName)
		fmt.Printf("   A watch loop or second shell may hold the database open.\n")
	} else {
		fmt.Printf("✓ Concurrent instances: none\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

// storeDB returns the raw database handle, or nil for unknown backends.
func storeDB(ctx *cli.Context) *sql.DB {
	switch store := ctx.Store.(type) {
	case *sqlite.Store:
		return store.GetDB()
	case *postgres.Store:
		return store.GetDB()
	default:
		return nil
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx)
	if err != nil {
		return err
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", currentVersion, latestVersion)
	}

	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	runner, err := migrationRunner(ctx)
	if err != nil {
		return err
	}

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion < latestVersion {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", currentVersion, latestVersion)
	}

	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'weeklit backup create'")
	}

	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	// The anchor habit, if set, must resolve to a live habit or the
	// first-week rule silently degrades.
	if settings.AnchorHabit != "" {
		if _, err := ctx.Store.GetHabitByName(settings.AnchorHabit); err != nil {
			return fmt.Errorf("anchor habit %q does not exist", settings.AnchorHabit)
		}
	}

	if settings.DefaultWeeklyTarget < 1 || settings.DefaultWeeklyTarget > 7 {
		return fmt.Errorf("default weekly target out of range: %d", settings.DefaultWeeklyTarget)
	}

	return nil
}

func checkClockTimezone(ctx *cli.Context, dbReachable bool) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if dbReachable {
		settings, err := ctx.Store.GetSettings()
		if err == nil {
			if _, err := utils.LoadLocation(settings.Timezone); err != nil {
				return fmt.Errorf("configured timezone %q is invalid: %w", settings.Timezone, err)
			}
		}
	}

	return nil
}

func checkHabitIntegrity(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Completions and deferrals referencing habits that no longer exist
	var orphanedCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM completions c
		LEFT JOIN habits h ON c.habit_id = h.id
		WHERE h.id IS NULL AND c.deleted_at IS NULL
	`).Scan(&orphanedCount)
	if err != nil {
		return fmt.Errorf("failed to check orphaned completions: %w", err)
	}
	if orphanedCount > 0 {
		return fmt.Errorf("found %d orphaned completions (referencing non-existent habits)", orphanedCount)
	}

	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM deferrals d
		LEFT JOIN habits h ON d.habit_id = h.id
		WHERE h.id IS NULL
	`).Scan(&orphanedCount)
	if err != nil {
		return fmt.Errorf("failed to check orphaned deferrals: %w", err)
	}
	if orphanedCount > 0 {
		return fmt.Errorf("found %d orphaned deferrals (referencing non-existent habits)", orphanedCount)
	}

	return nil
}

func checkCompletionDuplicates(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// At most one live completion per (habit, day)
	var duplicateCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM (
			SELECT habit_id, day, COUNT(*) AS cnt
			FROM completions
			WHERE deleted_at IS NULL
			GROUP BY habit_id, day
			HAVING COUNT(*) > 1
		) dupes
	`).Scan(&duplicateCount)
	if err != nil {
		return fmt.Errorf("failed to check duplicate completions: %w", err)
	}
	if duplicateCount > 0 {
		return fmt.Errorf("found %d habit+day combinations with duplicate completions", duplicateCount)
	}

	return nil
}

func checkDeferralIntegrity(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	// At most one open deferral per (habit, original day)
	var duplicateCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM (
			SELECT habit_id, original_day, COUNT(*) AS cnt
			FROM deferrals
			WHERE NOT completed
			GROUP BY habit_id, original_day
			HAVING COUNT(*) > 1
		) dupes
	`).Scan(&duplicateCount)
	if err != nil {
		return fmt.Errorf("failed to check duplicate open deferrals: %w", err)
	}
	if duplicateCount > 0 {
		return fmt.Errorf("found %d habit+day combinations with multiple open deferrals", duplicateCount)
	}

	// Targets must land after originals
	var invertedCount int
	err = db.QueryRow(`
		SELECT COUNT(*) FROM deferrals WHERE deferred_to_day <= original_day
	`).Scan(&invertedCount)
	if err != nil {
		return fmt.Errorf("failed to check deferral direction: %w", err)
	}
	if invertedCount > 0 {
		return fmt.Errorf("found %d deferrals whose target is not after the original day", invertedCount)
	}

	return nil
}

func checkDateFormats(ctx *cli.Context) error {
	db := storeDB(ctx)
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	for _, q := range []struct {
		table string
		query string
	}{
		{"completions", `SELECT day FROM completions`},
		{"deferrals", `SELECT original_day FROM deferrals`},
		{"adhoc_tasks", `SELECT day FROM adhoc_tasks`},
		{"day_stats", `SELECT day FROM day_stats`},
	} {
		invalid, err := countInvalidDates(db, q.query)
		if err != nil {
			return fmt.Errorf("failed to check %s dates: %w", q.table, err)
		}
		if invalid > 0 {
			return fmt.Errorf("found %d %s rows with invalid date format", invalid, q.table)
		}
	}

	return nil
}

// countInvalidDates scans day values in Go rather than relying on
// driver-specific pattern operators.
func countInvalidDates(db *sql.DB, query string) (int, error) {
	rows, err := db.Query(query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	invalid := 0
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return 0, err
		}
		if _, err := utils.ParseDay(day); err != nil {
			invalid++
		}
	}

	return invalid, rows.Err()
}

// countOtherInstances counts running weeklit processes other than this one.
// The tray companion app is excluded; it never holds the database.
func countOtherInstances() (int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return 0, err
	}

	self := os.Getpid()
	count := 0
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		exe := p.Executable()
		if !strings.HasPrefix(exe, constants.AppName) {
			continue
		}
		if strings.HasPrefix(exe, constants.NotifierTrayAppName) {
			continue
		}
		count++
	}

	return count, nil
}
