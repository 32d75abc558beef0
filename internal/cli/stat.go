package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/closure"
	"github.com/garagedev/sltcraft/internal/domain"
	"github.com/garagedev/sltcraft/internal/policy"
	"github.com/garagedev/sltcraft/internal/schema"
)

var statCmd = &cobra.Command{
	Use:   "stat <car|engine> <id>",
	Short: "Print metadata and dependency footprint for one entity",
	Long: `Displays the entity's row, which source it came from, the likely-clone
flag, and the size of the dependency closure a clone would copy.`,
	Args: cobra.ExactArgs(2),
	RunE: runStat,
}

var statFrom string

func init() {
	rootCmd.AddCommand(statCmd)
	statCmd.Flags().StringVar(&statFrom, "from", "", "Source database to read the root row from (default MAIN)")
}

func runStat(cmd *cobra.Command, args []string) error {
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

	src, err := cat.SourceByName(statFrom)
	if err != nil {
		return err
	}
	row, err := cat.Instance(kind, id, src)
	if err != nil {
		return err
	}

	pol, err := policy.Load()
	if err != nil {
		return err
	}
	cl, err := closure.New(cat, pol).Resolve(kind, id, src, closure.Options{})
	closureSize := 0
	closureErr := ""
	if err != nil {
		closureErr = err.Error()
	} else {
		closureSize = cl.Size()
	}

	name := ""
	if nc := schema.NameColumn(kind, row.Columns); nc != "" {
		if v, ok := row.Get(nc); ok {
			name = fmt.Sprintf("%v", v)
		}
	}
	year := int64(0)
	if yc := schema.YearColumn(row.Columns); yc != "" {
		year, _ = row.Int(yc)
	}

	stat := map[string]interface{}{
		"kind":         kind,
		"id":           id,
		"name":         name,
		"source":       src.Name(),
		"likely_clone": domain.IsLikelyClone(id, year),
		"closure_rows": closureSize,
	}
	if year != 0 {
		stat["year"] = year
	}
	if kind == domain.KindCar {
		if engineID, ok, err := cat.StockEngineID(src, id); err == nil && ok {
			stat["stock_engine_id"] = engineID
			stat["stock_engine"] = cat.ResolveEngineName(engineID)
		}
	}
	for col, name := range cat.DisplayFields(row) {
		stat[strings.ToLower(col)] = name
	}
	if closureErr != "" {
		stat["closure_error"] = closureErr
	}

	switch r.Format() {
	case "json", "ndjson", "yaml":
		return r.RenderRows(nil, nil, []interface{}{stat})
	}

	fixed := []string{"kind", "id", "name", "year", "source", "likely_clone", "stock_engine_id", "stock_engine", "closure_rows", "closure_error"}
	printed := map[string]bool{}
	for _, key := range fixed {
		if v, ok := stat[key]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%-16s %v\n", key+":", v)
			printed[key] = true
		}
	}
	var rest []string
	for key := range stat {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(cmd.OutOrStdout(), "%-16s %v\n", key+":", stat[key])
	}
	return nil
}
