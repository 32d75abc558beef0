package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garagedev/sltcraft/internal/domain"
)

var carsCmd = &cobra.Command{
	Use:   "cars",
	Short: "List cars across all loaded databases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, domain.KindCar)
	},
}

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List engines across all loaded databases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd, domain.KindEngine)
	},
}

var (
	listClonesOnly bool
	listSource     string
	listName       string
)

func init() {
	rootCmd.AddCommand(carsCmd)
	rootCmd.AddCommand(enginesCmd)
	for _, c := range []*cobra.Command{carsCmd, enginesCmd} {
		c.Flags().BoolVar(&listClonesOnly, "clones", false, "Only entries flagged as likely clones")
		c.Flags().StringVar(&listSource, "source", "", "Only entries from one source database")
		c.Flags().StringVar(&listName, "name", "", "Substring filter on the entity name")
	}
}

func runList(cmd *cobra.Command, kind domain.Kind) error {
	cat, cfg, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	r, err := newRenderer(cmd, cfg)
	if err != nil {
		return err
	}

	entries, err := cat.ListEntities(kind)
	if err != nil {
		return err
	}

	headers := []string{"ID", "NAME", "YEAR", "SOURCE", "CLONE"}
	var rows [][]string
	var items []interface{}
	for _, e := range entries {
		if listClonesOnly && !e.LikelyClone {
			continue
		}
		if listSource != "" && e.Source != listSource {
			continue
		}
		if listName != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(listName)) {
			continue
		}
		clone := ""
		if e.LikelyClone {
			clone = "yes"
		}
		year := ""
		if e.Year != 0 {
			year = fmt.Sprintf("%d", e.Year)
		}
		items = append(items, e)
		rows = append(rows, []string{fmt.Sprintf("%d", e.ID), e.Name, year, e.Source, clone})
	}
	return r.RenderRows(headers, rows, items)
}
