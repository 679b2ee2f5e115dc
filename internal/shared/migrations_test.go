package shared

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i, migration := range migrations {
			if migration.Up == "" {
				t.Errorf("migration %d missing up script", migration.Version)
			}
			if migration.Down == "" {
				t.Errorf("migration %d missing down script", migration.Version)
			}
			if i > 0 && migrations[i-1].Version >= migration.Version {
				t.Error("migrations should be sorted by version")
			}
		}
	})

	t.Run("RunMigrations", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if applied == 0 {
			t.Error("expected migrations to be recorded")
		}

		_, err = db.Exec(`INSERT INTO generation_runs
			(id, playlist_id, playlist_name, rule_summary, track_count, duration_ms, preview_only)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"run-1", "pl-1", "Test Playlist", "artist contains tame", 12, 2_400_000, 0)
		if err != nil {
			t.Fatalf("generation_runs table should accept inserts: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT track_count FROM generation_runs WHERE id = ?", "run-1").Scan(&count); err != nil {
			t.Fatalf("failed to read back run: %v", err)
		}
		if count != 12 {
			t.Errorf("expected track count 12, got %d", count)
		}
	})

	t.Run("RunMigrations is idempotent", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run should be a no-op: %v", err)
		}
	})

	t.Run("RollbackMigration", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='generation_runs'").Scan(&name)
		if err != sql.ErrNoRows {
			t.Errorf("expected generation_runs to be dropped, got %v", err)
		}
	})

	t.Run("RollbackMigration with no migrations", func(t *testing.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error when nothing to rollback")
		}
	})

	t.Run("removeComments", func(t *testing.T) {
		input := "CREATE TABLE foo ( -- a comment\n\tid TEXT\n)"
		cleaned := removeComments(input)
		if cleaned != "CREATE TABLE foo (\nid TEXT\n)" {
			t.Errorf("unexpected cleaned SQL: %q", cleaned)
		}
	})
}
