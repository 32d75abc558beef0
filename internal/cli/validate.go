package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/policy"
	"github.com/garagedev/sltcraft/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <car|engine> <id>",
	Short: "Check one entity for structural problems",
	Long: `Verifies the entity's row exists, its body block resolves, stock rows
are unique, and every torque curve reference lands on a real row.
Findings are reported, never auto-fixed.`,
	Args: cobra.ExactArgs(2),
	RunE: runValidate,
}

var validateFrom string

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateFrom, "from", "", "Source database to check against (default MAIN)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
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

	report, err := validate.New(cat, pol).Check(kind, id, validateFrom)
	if err != nil {
		return err
	}

	switch r.Format() {
	case "json", "ndjson", "yaml":
		if err := r.RenderRows(nil, nil, []interface{}{report}); err != nil {
			return err
		}
	default:
		headers := []string{"SEVERITY", "TABLE", "KEY", "DESCRIPTION"}
		var rows [][]string
		var items []interface{}
		for _, f := range report.Findings {
			key := ""
			if f.RowKey != 0 {
				key = fmt.Sprintf("%d", f.RowKey)
			}
			items = append(items, f)
			rows = append(rows, []string{string(f.Severity), f.Table, key, f.Description})
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d: ok\n", report.Kind, report.ID)
		} else if err := r.RenderRows(headers, rows, items); err != nil {
			return err
		}
	}

	if n := report.Errors(); n > 0 {
		return fmt.Errorf("%s %d: %d error findings", report.Kind, report.ID, n)
	}
	return nil
}
