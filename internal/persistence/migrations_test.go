package persistence

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"
)

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"010_add_index.sql", "001_create_tickets.sql", "README.md", "002_seed.sql.bak"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	want := []string{"001_create_tickets.sql", "010_add_index.sql"}
	if !slices.Equal(got, want) {
		t.Errorf("migrationFiles = %v, want %v", got, want)
	}
}

func TestMigrationFiles_MissingDir(t *testing.T) {
	if _, err := migrationFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMigrationFiles_ShippedSchema(t *testing.T) {
	got, err := migrationFiles(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(got) == 0 || got[0] != "001_create_tickets.sql" {
		t.Errorf("migrationFiles = %v, want 001_create_tickets.sql first", got)
	}
}

func TestRunMigrations_NoPool(t *testing.T) {
	if _, err := RunMigrations(context.Background(), nil, t.TempDir(), zap.NewNop()); err == nil {
		t.Fatal("expected error without a pool")
	}
}
