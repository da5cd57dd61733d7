package store

import (
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMemory(t *testing.T) {
	db := testDB(t)
	if db.Path != ":memory:" {
		t.Errorf("Path = %q, want :memory:", db.Path)
	}
	if err := db.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "recognition.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	v, ok, err := db.Get("k")
	if err != nil || !ok || v != "v" {
		t.Errorf("Get after reopen = %q, %v, %v", v, ok, err)
	}
}

func TestSchemaVersion(t *testing.T) {
	db := testDB(t)

	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != len(migrations) {
		t.Errorf("SchemaVersion = %d, want %d", v, len(migrations))
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := testDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestTablesExist(t *testing.T) {
	db := testDB(t)

	for _, table := range []string{"schema_versions", "kv_entries", "graph_events"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestEventKindConstraint(t *testing.T) {
	db := testDB(t)
	_, err := db.Exec(`INSERT INTO graph_events (kind, created_at) VALUES ('delete', 1000)`)
	if err == nil {
		t.Error("expected error for invalid kind, got nil")
	}
}

func TestKV(t *testing.T) {
	db := testDB(t)

	if _, ok, err := db.Get("missing"); err != nil || ok {
		t.Fatalf("Get missing = %v, %v", ok, err)
	}
	if err := db.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Set("a", "2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := db.Get("a")
	if err != nil || !ok || v != "2" {
		t.Errorf("Get = %q, %v, %v; want 2", v, ok, err)
	}
	if err := db.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := db.Delete("a"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if _, ok, _ := db.Get("a"); ok {
		t.Error("key still present after Delete")
	}
}
