package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}

func migration(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func TestApplyRecordsOnce(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{
		"001_battles.sql": migration("-- +migrate Up\nCREATE TABLE battles(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE battles;"),
		"002_index.sql":   migration("-- +migrate Up\nCREATE INDEX battles_id ON battles(id);"),
		"README.md":       migration("not a migration"),
	}
	for i := 0; i < 2; i++ {
		if err := Apply(context.Background(), db, fsys, ""); err != nil {
			t.Fatalf("apply #%d: %v", i, err)
		}
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 2 {
		t.Fatalf("recorded = %d, want 2", n)
	}
	if n := count(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='battles'"); n != 1 {
		t.Fatal("battles table missing")
	}
}

func TestApplyLeavesFailedMigrationUnrecorded(t *testing.T) {
	db := openDB(t)
	bad := fstest.MapFS{"001_bad.sql": migration("-- +migrate Up\nCREAT TABLE x(id INT);")}
	if err := Apply(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if n := count(t, db, "SELECT COUNT(*) FROM schema_migrations"); n != 0 {
		t.Fatalf("failed migration recorded: %d rows", n)
	}
	good := fstest.MapFS{"001_bad.sql": migration("-- +migrate Up\nCREATE TABLE x(id INTEGER PRIMARY KEY);")}
	if err := Apply(context.Background(), db, good, ""); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
}

func TestApplyUsesRootInKey(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{"migrations/001_init.sql": migration("CREATE TABLE runs(id TEXT);")}
	if err := Apply(context.Background(), db, fsys, "migrations"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var key string
	if err := db.QueryRow("SELECT name FROM schema_migrations").Scan(&key); err != nil {
		t.Fatalf("read key: %v", err)
	}
	if key != "migrations/001_init.sql" {
		t.Fatalf("key = %q", key)
	}
}

func TestApplyRequiresDB(t *testing.T) {
	if err := Apply(context.Background(), nil, fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected nil db error")
	}
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{name: "no markers", in: "CREATE TABLE a(id INT);", want: "CREATE TABLE a(id INT);"},
		{name: "up only", in: "-- +migrate Up\nSELECT 1;", want: "\nSELECT 1;"},
		{name: "up and down", in: "-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;", want: "\nSELECT 1;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpSection(tt.in); got != tt.want {
				t.Fatalf("UpSection = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if !IsAlreadyExistsError(errors.New("table battles already exists")) {
		t.Fatal("expected already exists match")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("unexpected match")
	}
}
