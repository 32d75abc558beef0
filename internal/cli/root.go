package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sltcraft",
	Short: "Clone and inspect cars and engines in Forza .slt databases",
	Long: `sltcraft reads a MAIN game database plus any DLC databases, resolves
the full dependency closure of a car or engine, and clones it onto a
fresh id. DLC sources are always opened read-only; only MAIN is ever
written, and every clone applies in a single transaction.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to MAIN database file (overrides SLTCRAFT_MAIN_DB)")
	rootCmd.PersistentFlags().String("dlc", "", "Directory scanned for DLC databases (overrides SLTCRAFT_DLC_DIR)")
	rootCmd.PersistentFlags().String("output", "", "Output format: table, json, ndjson, yaml, tsv")
	rootCmd.PersistentFlags().Bool("porcelain", false, "Stable machine-readable output")
}
