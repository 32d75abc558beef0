package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDB(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCreateNamesBackupAfterSource(t *testing.T) {
	dir := t.TempDir()
	src := writeDB(t, dir, "gamedb.slt", "original")

	got, err := Create(src, "")
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(got)
	if !strings.HasPrefix(base, "gamedb_backup_") || !strings.HasSuffix(base, ".slt") {
		t.Errorf("unexpected backup name %q", base)
	}
	if filepath.Dir(got) != dir {
		t.Errorf("backup landed in %s, want next to the source", filepath.Dir(got))
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("backup content = %q", data)
	}
}

func TestCreateIntoSeparateDir(t *testing.T) {
	dir := t.TempDir()
	src := writeDB(t, dir, "gamedb.slt", "original")
	backups := filepath.Join(dir, "backups", "nested")

	got, err := Create(src, backups)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(got) != backups {
		t.Errorf("backup landed in %s, want %s", filepath.Dir(got), backups)
	}
}

func TestCreateMissingSource(t *testing.T) {
	if _, err := Create(filepath.Join(t.TempDir(), "nope.slt"), ""); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestRestoreOverwritesTarget(t *testing.T) {
	dir := t.TempDir()
	src := writeDB(t, dir, "gamedb.slt", "original")

	backupPath, err := Create(src, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("mangled"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Restore(backupPath, src); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("restored content = %q", data)
	}
}

func TestListFindsOnlyMatchingBackups(t *testing.T) {
	dir := t.TempDir()
	src := writeDB(t, dir, "gamedb.slt", "original")
	other := writeDB(t, dir, "dlc_hotwheels.slt", "dlc")

	if _, err := Create(src, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := Create(other, ""); err != nil {
		t.Fatal(err)
	}

	got, err := List(src, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("List returned %d backups, want 1: %v", len(got), got)
	}
	if !strings.Contains(filepath.Base(got[0]), "gamedb_backup_") {
		t.Errorf("unexpected match %q", got[0])
	}
}
