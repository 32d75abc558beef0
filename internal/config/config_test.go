package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chtmp moves the test into an isolated directory with its own HOME so a
// developer's real .env.local or config.yaml cannot leak in.
func chtmp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	return tmpDir
}

func TestLoadDefaults(t *testing.T) {
	chtmp(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "table" {
		t.Errorf("Output = %q, want table", cfg.Output)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.MainDB != "" {
		t.Errorf("MainDB = %q, want empty without a local gamedb.slt", cfg.MainDB)
	}
}

func TestLoadPicksUpLocalGameDB(t *testing.T) {
	tmpDir := chtmp(t)
	if err := os.WriteFile(filepath.Join(tmpDir, "gamedb.slt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MainDB != "gamedb.slt" {
		t.Errorf("MainDB = %q, want gamedb.slt", cfg.MainDB)
	}
	if cfg.DLCDir != "." {
		t.Errorf("DLCDir = %q, want the main database's directory", cfg.DLCDir)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chtmp(t)
	t.Setenv("SLTCRAFT_MAIN_DB", "/data/gamedb.slt")
	t.Setenv("SLTCRAFT_BACKUP_DIR", "/data/backups")
	t.Setenv("SLTCRAFT_ID_FLOOR", "5000")
	t.Setenv("SLTCRAFT_YEAR_MARKER", "8888")
	t.Setenv("SLTCRAFT_OUTPUT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MainDB != "/data/gamedb.slt" {
		t.Errorf("MainDB = %q", cfg.MainDB)
	}
	if cfg.BackupDir != "/data/backups" {
		t.Errorf("BackupDir = %q", cfg.BackupDir)
	}
	if cfg.IDFloor != 5000 {
		t.Errorf("IDFloor = %d", cfg.IDFloor)
	}
	if cfg.YearMarker != 8888 {
		t.Errorf("YearMarker = %d", cfg.YearMarker)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if cfg.DLCDir != "/data" {
		t.Errorf("DLCDir = %q, want the main database's directory", cfg.DLCDir)
	}
}

func TestLoadMainDBFromFileVariant(t *testing.T) {
	tmpDir := chtmp(t)
	secretPath := filepath.Join(tmpDir, "db_path")
	if err := os.WriteFile(secretPath, []byte("/mnt/games/gamedb.slt"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLTCRAFT_MAIN_DB_FILE", secretPath)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MainDB != "/mnt/games/gamedb.slt" {
		t.Errorf("MainDB = %q", cfg.MainDB)
	}
}

func TestLoadBadIDFloor(t *testing.T) {
	chtmp(t)
	t.Setenv("SLTCRAFT_ID_FLOOR", "lots")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric SLTCRAFT_ID_FLOOR")
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	tmpDir := chtmp(t)
	confDir := filepath.Join(tmpDir, ".config", "sltcraft")
	if err := os.MkdirAll(confDir, 0755); err != nil {
		t.Fatal(err)
	}
	yamlContent := "main_db: /saved/gamedb.slt\noutput: tsv\n"
	if err := os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MainDB != "/saved/gamedb.slt" {
		t.Errorf("MainDB = %q", cfg.MainDB)
	}
	if cfg.Output != "tsv" {
		t.Errorf("Output = %q", cfg.Output)
	}
}

func TestEnvBeatsYAML(t *testing.T) {
	tmpDir := chtmp(t)
	confDir := filepath.Join(tmpDir, ".config", "sltcraft")
	if err := os.MkdirAll(confDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "config.yaml"), []byte("output: tsv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SLTCRAFT_OUTPUT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output != "json" {
		t.Errorf("Output = %q, want environment to win over YAML", cfg.Output)
	}
}

func TestFindEnvLocal_InCurrentDir(t *testing.T) {
	tmpDir := chtmp(t)
	if err := os.WriteFile(filepath.Join(tmpDir, ".env.local"), []byte("TEST=value"), 0644); err != nil {
		t.Fatal(err)
	}

	if result := findEnvLocal(); result == "" {
		t.Error("expected to find .env.local in current directory")
	}
}

func TestFindEnvLocal_ClosestWins(t *testing.T) {
	tmpDir := chtmp(t)
	parentDir := filepath.Join(tmpDir, "parent")
	childDir := filepath.Join(parentDir, "child")
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ".env.local"), []byte("TEST=grandparent"), 0644); err != nil {
		t.Fatal(err)
	}
	parentEnvPath := filepath.Join(parentDir, ".env.local")
	if err := os.WriteFile(parentEnvPath, []byte("TEST=parent"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(childDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(parentEnvPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected closest .env.local (%s), got %s", expectedResolved, resultResolved)
	}
}

func TestFindEnvLocal_NotFound(t *testing.T) {
	chtmp(t)

	if result := findEnvLocal(); result != "" {
		t.Errorf("expected empty string when no .env.local found, got %s", result)
	}
}
