package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/alloc"
	"github.com/garagedev/sltcraft/internal/catalog"
	"github.com/garagedev/sltcraft/internal/closure"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
	"github.com/garagedev/sltcraft/internal/schema"
)

var diffCmd = &cobra.Command{
	Use:   "diff <car|engine> <id-a> <id-b>",
	Short: "Compare two entities row by row",
	Long: `Resolves both entities' dependency closures, renders them as normalized
text with ids folded to their base-block offsets, and prints a unified
diff. A clone compared against its donor should show only the root ids.

Examples:
  sltcraft diff car 338 2001
  sltcraft diff engine 4084 2500 --unified 5`,
	Args: cobra.ExactArgs(3),
	RunE: runDiff,
}

var (
	diffUnified int
	diffFromA   string
	diffFromB   string
)

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().IntVar(&diffUnified, "unified", 3, "Lines of unified context")
	diffCmd.Flags().StringVar(&diffFromA, "from-a", "", "Source database of the first entity (default MAIN)")
	diffCmd.Flags().StringVar(&diffFromB, "from-b", "", "Source database of the second entity (default MAIN)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(args[0])
	if err != nil {
		return err
	}
	idA, err := parseID(args[1])
	if err != nil {
		return err
	}
	idB, err := parseID(args[2])
	if err != nil {
		return err
	}

	cat, _, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	pol, err := policy.Load()
	if err != nil {
		return err
	}
	res := closure.New(cat, pol)

	dumpA, err := dumpClosure(cat, res, kind, idA, diffFromA)
	if err != nil {
		return err
	}
	dumpB, err := dumpClosure(cat, res, kind, idB, diffFromB)
	if err != nil {
		return err
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(dumpA),
		B:        difflib.SplitLines(dumpB),
		FromFile: fmt.Sprintf("%s/%d", kind, idA),
		ToFile:   fmt.Sprintf("%s/%d", kind, idB),
		Context:  diffUnified,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d and %d are identical\n", kind, idA, idB)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

// dumpClosure renders a closure as sorted table/column/value lines with the
// root id and its base-block ids normalized, so donor and clone line up.
func dumpClosure(cat *catalog.Catalog, res *closure.Resolver, kind domain.Kind, id int64, from string) (string, error) {
	src, err := cat.SourceByName(from)
	if err != nil {
		return "", err
	}
	cl, err := res.Resolve(kind, id, src, closure.Options{})
	if err != nil {
		return "", err
	}

	var lines []string
	add := func(table string, row domain.Row) {
		var cells []string
		for i, col := range row.Columns {
			cells = append(cells, fmt.Sprintf("%s=%s", col, normalizeValue(col, row.Values[i], id)))
		}
		sort.Strings(cells)
		lines = append(lines, table+": "+strings.Join(cells, " "))
	}

	add(catalog.EntityTable(kind), cl.RootRow)
	for _, row := range cl.BodyRows {
		add("Data_CarBody", row)
	}
	for _, group := range cl.Scoped {
		for _, row := range group.Rows {
			add(group.Table, row)
		}
	}
	for _, group := range cl.Combos {
		for _, row := range group.Rows {
			add(group.Table, row)
		}
	}
	for _, curve := range cl.TorqueCurves {
		add("List_TorqueCurve", curve.Row)
	}

	sort.Strings(lines)
	return strings.Join(lines, "\n") + "\n", nil
}

// normalizeValue folds ids tied to the root entity into stable placeholders:
// the root id becomes @root, base-block ids become @block+offset. Everything
// else renders as-is.
func normalizeValue(col string, v any, rootID int64) string {
	n, ok := domain.AsInt(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	if !schema.IsReferenceColumn(col) && !schema.IsEngineRefColumn(col) &&
		!schema.IsDrivetrainRefColumn(col) && col != "Ordinal" {
		return fmt.Sprintf("%d", n)
	}
	if n == rootID {
		return "@root"
	}
	if alloc.InBlock(n, rootID) {
		return fmt.Sprintf("@block+%d", alloc.Offset(n, rootID))
	}
	if n >= rootID*100 && n < rootID*100+100 {
		return fmt.Sprintf("@curve+%d", n-rootID*100)
	}
	return fmt.Sprintf("%d", n)
}
