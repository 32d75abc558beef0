package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	MainDB     string `yaml:"main_db"`
	DLCDir     string `yaml:"dlc_dir"`
	BackupDir  string `yaml:"backup_dir"`
	IDFloor    int64  `yaml:"id_floor"`
	YearMarker int64  `yaml:"year_marker"`
	Output     string `yaml:"output"`
	LogLevel   string `yaml:"log_level"`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/sltcraft/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		Output:   "table",
		LogLevel: "info",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// YAML config is optional
	_ = loadYAMLConfig(cfg)

	// Override with environment variables
	if mainDB := getEnvOrFile("SLTCRAFT_MAIN_DB", "SLTCRAFT_MAIN_DB_FILE"); mainDB != "" {
		cfg.MainDB = mainDB
	}
	if dlcDir := os.Getenv("SLTCRAFT_DLC_DIR"); dlcDir != "" {
		cfg.DLCDir = dlcDir
	}
	if backupDir := os.Getenv("SLTCRAFT_BACKUP_DIR"); backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if floor := os.Getenv("SLTCRAFT_ID_FLOOR"); floor != "" {
		v, err := strconv.ParseInt(floor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SLTCRAFT_ID_FLOOR: %w", err)
		}
		cfg.IDFloor = v
	}
	if marker := os.Getenv("SLTCRAFT_YEAR_MARKER"); marker != "" {
		v, err := strconv.ParseInt(marker, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("SLTCRAFT_YEAR_MARKER: %w", err)
		}
		cfg.YearMarker = v
	}
	if output := os.Getenv("SLTCRAFT_OUTPUT"); output != "" {
		cfg.Output = output
	}
	if logLevel := os.Getenv("SLTCRAFT_LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Set defaults if not configured
	if cfg.MainDB == "" {
		if _, err := os.Stat("gamedb.slt"); err == nil {
			cfg.MainDB = "gamedb.slt"
		}
	}
	if cfg.DLCDir == "" && cfg.MainDB != "" {
		cfg.DLCDir = filepath.Dir(cfg.MainDB)
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/sltcraft/config.yaml
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(homeDir, ".config", "sltcraft", "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return string(data)
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, just check cwd
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Clean paths for reliable comparison
	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}

		// Stop if we've reached home directory
		if dir == homeDir {
			break
		}

		// Get parent directory
		parent := filepath.Dir(dir)

		// Stop if we've reached the filesystem root
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
