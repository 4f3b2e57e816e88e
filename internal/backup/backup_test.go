package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "weeklit.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE habits (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}

	for _, row := range [][2]string{{"h1", "Phone Lock"}, {"h2", "Gym"}} {
		if _, err := db.Exec("INSERT INTO habits (id, name) VALUES (?, ?)", row[0], row[1]); err != nil {
			t.Fatalf("failed to insert test data: %v", err)
		}
	}

	return dbPath
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)

	mgr := NewManager(dbPath)
	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		t.Fatalf("backup file was not created: %s", backupPath)
	}

	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count); err != nil {
		t.Fatalf("failed to query backup database: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows in backup, got %d", count)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "nope.db"))

	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error backing up a missing database")
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected 0 backups initially, got %d", len(backups))
	}

	for i := 0; i < 3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) == 0 {
		t.Fatal("expected backups after creating some")
	}

	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups are not sorted newest first at index %d", i)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	// Mutate the live database, then restore.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM habits"); err != nil {
		t.Fatalf("failed to mutate database: %v", err)
	}
	db.Close()

	if err := mgr.RestoreBackup(backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	db, err = sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&count); err != nil {
		t.Fatalf("failed to query restored database: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 rows after restore, got %d", count)
	}
}

func TestRestoreBackupInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	badPath := filepath.Join(t.TempDir(), "bad.db")
	if err := os.WriteFile(badPath, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := mgr.RestoreBackup(badPath); err == nil {
		t.Error("expected error restoring an invalid file")
	}
}

func TestStripCounterSuffix(t *testing.T) {
	cases := map[string]string{
		"20250106-1504":     "20250106-1504",
		"20250106-150405":   "20250106-150405",
		"20250106-150405-2": "20250106-150405",
		"20250106-1504-12":  "20250106-1504",
	}
	for in, want := range cases {
		if got := stripCounterSuffix(in); got != want {
			t.Errorf("stripCounterSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}
