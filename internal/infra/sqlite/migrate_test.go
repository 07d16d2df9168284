package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/codevakure/bedrock-api-code/internal/infra/sqlite"
)

func TestMigrate_RunsAllMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v; want nil", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("SELECT COUNT(*) FROM schema_migrations error = %v", err)
	}
	if count == 0 {
		t.Error("schema_migrations has 0 rows after MigrateUp; want > 0")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first run error = %v; want nil", err)
	}
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second run error = %v; want nil (idempotent)", err)
	}
}

func TestMigrate_SyncJobsTableCreated(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	assertTableExists(t, db, "sync_jobs")
}

func TestMigrate_QueryLogTableCreated(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	assertTableExists(t, db, "query_log")
}

func TestMigrate_SyncJobInsertAndRead(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO sync_jobs (id, status, started_at)
		VALUES ('job-1', 'IN_PROGRESS', datetime('now'))
	`); err != nil {
		t.Fatalf("sync_jobs insert: %v", err)
	}

	var status string
	if err := db.QueryRow("SELECT status FROM sync_jobs WHERE id = 'job-1'").Scan(&status); err != nil {
		t.Fatalf("sync_jobs read: %v", err)
	}
	if status != "IN_PROGRESS" {
		t.Errorf("status = %q; want IN_PROGRESS", status)
	}
}

func TestMigrate_SyncJobDuplicateID(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO sync_jobs (id, status, started_at)
		VALUES ('job-1', 'IN_PROGRESS', datetime('now'))
	`); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := db.Exec(`
		INSERT INTO sync_jobs (id, status, started_at)
		VALUES ('job-1', 'COMPLETE', datetime('now'))
	`)
	if err == nil {
		t.Error("duplicate job id INSERT succeeded; want PRIMARY KEY constraint error")
	}
}

func TestMigrate_Version(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v; want nil", err)
	}
	if version < 2 {
		t.Errorf("MigrationVersion() = %d; want >= 2 after MigrateUp", version)
	}
}

func TestMigrate_OnlyAppliesPending(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() first error = %v", err)
	}

	var countBefore int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countBefore); err != nil {
		t.Fatalf("count before: %v", err)
	}

	if err := sqlite.MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() second error = %v", err)
	}

	var countAfter int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&countAfter); err != nil {
		t.Fatalf("count after: %v", err)
	}

	if countAfter != countBefore {
		t.Errorf("schema_migrations count changed from %d to %d; want unchanged", countBefore, countAfter)
	}
}

func TestMigrationVersion_NoMigrations(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	version, err := sqlite.MigrationVersion(db)
	if err != nil {
		t.Fatalf("MigrationVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("MigrationVersion() = %d; want 0 on fresh DB", version)
	}
}

func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var name string
	err := db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
		tableName,
	).Scan(&name)

	if err == sql.ErrNoRows {
		t.Errorf("table %q not found in sqlite_master after MigrateUp", tableName)
		return
	}
	if err != nil {
		t.Fatalf("assertTableExists(%q) query error = %v", tableName, err)
	}
}
