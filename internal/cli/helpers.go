package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/config"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/render"
)

// loadConfig loads configuration and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath := cmd.Flag("db").Value.String(); dbPath != "" {
		cfg.MainDB = dbPath
	}
	if dlcDir := cmd.Flag("dlc").Value.String(); dlcDir != "" {
		cfg.DLCDir = dlcDir
	}
	if output := cmd.Flag("output").Value.String(); output != "" {
		cfg.Output = output
	}
	if cfg.MainDB == "" {
		return nil, fmt.Errorf("no MAIN database configured (set SLTCRAFT_MAIN_DB or use --db)")
	}
	return cfg, nil
}

// openCatalog loads config and opens MAIN plus every discovered DLC file.
func openCatalog(cmd *cobra.Command) (*catalog.Catalog, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	dlcPaths, err := catalog.DiscoverDLC(cfg.DLCDir, cfg.MainDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to scan DLC dir: %w", err)
	}

	cat, err := catalog.Open(cfg.MainDB, dlcPaths)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, cfg, nil
}

func newRenderer(cmd *cobra.Command, cfg *config.Config) (*render.Renderer, error) {
	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	porcelain, _ := cmd.Flags().GetBool("porcelain")
	return render.NewRenderer(cmd.OutOrStdout(), render.Options{
		Format:    format,
		Porcelain: porcelain,
	}), nil
}

func parseKind(s string) (domain.Kind, error) {
	switch s {
	case "car", "cars":
		return domain.KindCar, nil
	case "engine", "engines":
		return domain.KindEngine, nil
	}
	return "", fmt.Errorf("unknown entity kind %q (expected car or engine)", s)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: expected a positive integer", s)
	}
	return id, nil
}
