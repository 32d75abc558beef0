package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/backup"
	"github.com/garagedev/sltcraft/internal/clone"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <car|engine> <donor-id>",
	Short: "Clone a car or engine onto a fresh id in MAIN",
	Long: `Resolves the donor's full dependency closure, allocates a collision-free
id, rewrites every copied row, and commits in one transaction. The donor
may live in MAIN or any DLC database; writes only ever touch MAIN.

Examples:
  sltcraft clone car 338
  sltcraft clone car 338 --from dlc_hotwheels --stock-engine
  sltcraft clone engine 4084 --id 2500 --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runClone,
}

var (
	cloneFrom        string
	cloneForcedID    int64
	cloneYear        int64
	cloneStockEngine bool
	cloneReassignDT  bool
	cloneStockDTOnly bool
	cloneDryRun      bool
	cloneNoBackup    bool
	cloneBackupDir   string
)

func init() {
	rootCmd.AddCommand(cloneCmd)
	cloneCmd.Flags().StringVar(&cloneFrom, "from", "", "Donor source database (default MAIN)")
	cloneCmd.Flags().Int64Var(&cloneForcedID, "id", 0, "Force the new id instead of auto-assigning")
	cloneCmd.Flags().Int64Var(&cloneYear, "year", 0, "Model year written to the clone (default 6969)")
	cloneCmd.Flags().BoolVar(&cloneStockEngine, "stock-engine", false, "Also clone the donor's stock engine")
	cloneCmd.Flags().BoolVar(&cloneReassignDT, "reassign-drivetrains", false, "Copy referenced drivetrain rows into the new car's id block")
	cloneCmd.Flags().BoolVar(&cloneStockDTOnly, "stock-drivetrain-only", false, "Copy only the stock drivetrain upgrade row")
	cloneCmd.Flags().BoolVar(&cloneDryRun, "dry-run", false, "Plan the clone without writing anything")
	cloneCmd.Flags().BoolVar(&cloneNoBackup, "no-backup", false, "Skip the pre-clone backup of MAIN")
	cloneCmd.Flags().StringVar(&cloneBackupDir, "backup-dir", "", "Directory for the pre-clone backup (overrides SLTCRAFT_BACKUP_DIR)")
}

func runClone(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	donorID, err := parseID(args[1])
	if err != nil {
		return err
	}

	cat, cfg, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	pol, err := policy.Load()
	if err != nil {
		return err
	}

	yearMarker := cloneYear
	if yearMarker == 0 {
		yearMarker = cfg.YearMarker
	}

	req := clone.Request{
		Kind:    kind,
		DonorID: donorID,
		Source:  cloneFrom,
		DryRun:  cloneDryRun,
		Options: domain.CloneOptions{
			BackupBeforeClone:     !cloneNoBackup,
			YearMarker:            yearMarker,
			CloneStockEngine:      cloneStockEngine,
			ReassignDrivetrainIDs: cloneReassignDT,
			StockDrivetrainOnly:   cloneStockDTOnly,
			ForcedID:              cloneForcedID,
		},
	}

	// The backup wraps the operation from outside; the engine itself
	// never copies files.
	backupPath := ""
	if req.Options.BackupBeforeClone && !cloneDryRun {
		dir := cloneBackupDir
		if dir == "" {
			dir = cfg.BackupDir
		}
		backupPath, err = backup.Create(cfg.MainDB, dir)
		if err != nil {
			return fmt.Errorf("pre-clone backup failed: %w", err)
		}
	}

	result, err := clone.New(cat, pol, cfg.IDFloor).Clone(req)
	if err != nil {
		return err
	}
	result.BackupPath = backupPath

	switch r.Format() {
	case "json", "ndjson", "yaml":
		return r.RenderRows(nil, nil, []interface{}{result})
	}

	out := cmd.OutOrStdout()
	verb := "cloned"
	if result.State == domain.ClonePlanned {
		verb = "would clone"
	}
	fmt.Fprintf(out, "%s %s %d -> %d (%d rows across %d tables)\n",
		verb, result.Kind, result.DonorID, result.NewID, result.RowsWritten, len(result.TablesTouched))
	if backupPath != "" {
		fmt.Fprintf(out, "backup: %s\n", backupPath)
	}
	fmt.Fprintf(out, "operation: %s\n", result.OperationID)
	return nil
}
