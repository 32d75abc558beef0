package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List loaded database sources",
	Long:  `Lists the MAIN database and every discovered DLC database, with role and table count.`,
	Args:  cobra.NoArgs,
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cat, cfg, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	type sourceInfo struct {
		Name   string `json:"name"`
		Role   string `json:"role"`
		Path   string `json:"path"`
		Tables int    `json:"tables"`
	}

	headers := []string{"NAME", "ROLE", "TABLES", "PATH"}
	var rows [][]string
	var items []interface{}
	for _, src := range cat.Sources() {
		info := sourceInfo{
			Name:   src.Name(),
			Role:   string(src.Role),
			Path:   src.Path(),
			Tables: len(src.Tables()),
		}
		items = append(items, info)
		rows = append(rows, []string{info.Name, info.Role, fmt.Sprintf("%d", info.Tables), info.Path})
	}
	return r.RenderRows(headers, rows, items)
}
