package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "migrate.db")+"?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseMigrationFile(t *testing.T) {
	mr := NewMigrationRunner("sqlite3", nil)

	migration, err := mr.parseMigrationFile(migrationsFS, "migrations/sqlite3/0001_initial_schema.up.sql")
	if err != nil {
		t.Fatalf("failed to parse migration file: %v", err)
	}

	if migration.Version != 1 {
		t.Errorf("version = %d, want 1", migration.Version)
	}
	if migration.Name != "initial_schema" {
		t.Errorf("name = %q, want initial_schema", migration.Name)
	}
	if !migration.Up {
		t.Error("direction parsed as down")
	}
	if migration.SQL == "" {
		t.Error("migration SQL is empty")
	}

	if _, err := mr.parseMigrationFile(migrationsFS, "migrations/sqlite3/not_a_migration.sql"); err == nil {
		t.Error("invalid filename accepted")
	}
}

func TestSchemaMigrationBeforeAfter(t *testing.T) {
	up := SchemaMigration{Version: 2, Up: true}
	if up.Before() != 1 || up.After() != 2 {
		t.Errorf("up migration before/after = %d/%d, want 1/2", up.Before(), up.After())
	}

	down := SchemaMigration{Version: 2, Up: false}
	if down.Before() != 2 || down.After() != 1 {
		t.Errorf("down migration before/after = %d/%d, want 2/1", down.Before(), down.After())
	}
}

func TestGetLatestMigrationVersion(t *testing.T) {
	for _, driver := range []string{"sqlite3", "postgres"} {
		mr := NewMigrationRunner(driver, nil)
		version, err := mr.GetLatestMigrationVersion()
		if err != nil {
			t.Fatalf("%s: failed to get latest version: %v", driver, err)
		}
		if version < 1 {
			t.Errorf("%s: latest version = %d, want >= 1", driver, version)
		}
	}

	mr := NewMigrationRunner("oracle", nil)
	if _, err := mr.GetLatestMigrationVersion(); err == nil {
		t.Error("unsupported driver accepted")
	}
}

func TestMigrateFreshDatabase(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mr := NewMigrationRunner("sqlite3", db)
	if err := mr.Migrate(ctx, -1); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	// All seven tables exist afterwards
	tables := []string{"users", "calendars", "permissions", "status", "calendar_users", "events", "invites"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing after migration: %v", table, err)
		}
	}

	version, err := mr.currentVersion(ctx)
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	latest, err := mr.GetLatestMigrationVersion()
	if err != nil {
		t.Fatalf("failed to get latest version: %v", err)
	}
	if version != latest {
		t.Errorf("schema at version %d, want %d", version, latest)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mr := NewMigrationRunner("sqlite3", db)
	if err := mr.Migrate(ctx, -1); err != nil {
		t.Fatalf("first migration failed: %v", err)
	}

	// Already at target; must be a no-op, not an error
	mr = NewMigrationRunner("sqlite3", db)
	if err := mr.Migrate(ctx, -1); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestMigrateDownToZero(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	mr := NewMigrationRunner("sqlite3", db)
	if err := mr.Migrate(ctx, -1); err != nil {
		t.Fatalf("up migration failed: %v", err)
	}

	mr = NewMigrationRunner("sqlite3", db)
	if err := mr.Migrate(ctx, 0); err != nil {
		t.Fatalf("down migration failed: %v", err)
	}

	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'events'").Scan(&count)
	if err != nil {
		t.Fatalf("failed to inspect schema: %v", err)
	}
	if count != 0 {
		t.Error("events table still present after rollback")
	}

	version, err := mr.currentVersion(ctx)
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != 0 {
		t.Errorf("schema at version %d after rollback, want 0", version)
	}
}

func TestSkipMigration(t *testing.T) {
	mr := NewMigrationRunner("sqlite3", nil)

	up1 := SchemaMigration{Version: 1, Up: true}
	down1 := SchemaMigration{Version: 1, Up: false}

	// Going up from zero: apply up, skip down
	if mr.skipMigration(up1, 0, 1) {
		t.Error("up migration skipped on upgrade")
	}
	if !mr.skipMigration(down1, 0, 1) {
		t.Error("down migration applied on upgrade")
	}

	// Going down to zero: apply down, skip up
	if mr.skipMigration(down1, 1, 0) {
		t.Error("down migration skipped on rollback")
	}
	if !mr.skipMigration(up1, 1, 0) {
		t.Error("up migration applied on rollback")
	}

	// Already applied versions stay skipped
	if !mr.skipMigration(up1, 1, 2) {
		t.Error("already applied migration not skipped")
	}
}
